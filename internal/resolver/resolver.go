// Package resolver decides which schedule, if any, is active at a given
// instant. Evaluate is a pure function of (now, schedule set, exceptions);
// Service wraps it with the store and the once-per-episode audit append.
package resolver

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Candidate pairs an occurring schedule with the start instant of its
// current occurrence, used for tie-breaking and for the audit entry.
type Candidate struct {
	Schedule model.Schedule
	Start    time.Time
	End      time.Time
}

// Evaluate returns the single active schedule at now, or ok=false when none
// is occurring. When several schedules occur at once the one whose occurrence
// started latest wins; ties keep the lowest schedule id, so repeated calls
// with identical input always return the same winner.
func Evaluate(now time.Time, schedules []model.Schedule, excepted map[model.ExceptionKey]bool) (Candidate, bool) {
	ordered := make([]model.Schedule, len(schedules))
	copy(ordered, schedules)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var winner Candidate
	var found bool
	for _, s := range ordered {
		cand, ok := occurring(now, s, excepted)
		if !ok {
			continue
		}
		if !found || cand.Start.After(winner.Start) {
			winner = cand
			found = true
		}
	}
	return winner, found
}

// occurring runs the occurrence and time-window tests for one schedule.
// Malformed date or time strings exclude the schedule from the occurring
// set rather than failing the whole evaluation.
func occurring(now time.Time, s model.Schedule, excepted map[model.ExceptionKey]bool) (Candidate, bool) {
	if len(s.Playlist) == 0 {
		// empty playlists are inert
		return Candidate{}, false
	}

	loc := now.Location()
	startDate, err := time.ParseInLocation(dateLayout, s.StartDate, loc)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", s.ID).Str("start_date", s.StartDate).
			Msg("schedule excluded: bad start date")
		return Candidate{}, false
	}
	endDate, err := time.ParseInLocation(dateLayout, s.EndDate, loc)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", s.ID).Str("end_date", s.EndDate).
			Msg("schedule excluded: bad end date")
		return Candidate{}, false
	}
	startTime, err := time.Parse(timeLayout, s.StartTime)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", s.ID).Str("start_time", s.StartTime).
			Msg("schedule excluded: bad start time")
		return Candidate{}, false
	}
	endTime, err := time.Parse(timeLayout, s.EndTime)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", s.ID).Str("end_time", s.EndTime).
			Msg("schedule excluded: bad end time")
		return Candidate{}, false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch s.RepeatType {
	case model.RepeatNone, "":
		// one continuous window spanning the whole date range at the
		// wall-clock boundaries, not per-day
		start := at(startDate, startTime)
		end := at(endDate, endTime)
		if within(now, start, end) {
			return Candidate{Schedule: s, Start: start, End: end}, true
		}
		return Candidate{}, false

	case model.RepeatWeekly, model.RepeatMonthly:
		// per-day windows; an occurrence that started yesterday may still
		// be open when its window rolls past midnight
		var cand Candidate
		var found bool
		for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
			if day.Before(startDate) || day.After(endDate) {
				continue
			}
			if !recurrenceMatches(s, day) {
				continue
			}
			if excepted[model.ExceptionKey{ScheduleID: s.ID, Date: day.Format(dateLayout)}] {
				continue
			}
			start := at(day, startTime)
			end := at(day, endTime)
			if !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
			if within(now, start, end) && (!found || start.After(cand.Start)) {
				cand = Candidate{Schedule: s, Start: start, End: end}
				found = true
			}
		}
		return cand, found

	default:
		log.Error().Int64("schedule_id", s.ID).Str("repeat_type", s.RepeatType).
			Msg("schedule excluded: unknown repeat type")
		return Candidate{}, false
	}
}

func recurrenceMatches(s model.Schedule, day time.Time) bool {
	switch s.RepeatType {
	case model.RepeatWeekly:
		name := day.Weekday().String()
		for _, w := range s.Weekdays {
			if strings.EqualFold(w, name) || strings.EqualFold(w, name[:3]) {
				return true
			}
		}
		return false
	case model.RepeatMonthly:
		for _, d := range s.MonthDates {
			if d == day.Day() {
				return true
			}
		}
		return false
	}
	return false
}

// at pins a wall-clock time onto a calendar day.
func at(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
}

// within is the inclusive window test: start <= now <= end.
func within(now, start, end time.Time) bool {
	return !now.Before(start) && !now.After(end)
}
