package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatech-av/cadenza/internal/model"
)

func playlist(n int) []model.PlaylistEntry {
	out := make([]model.PlaylistEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.PlaylistEntry{
			TrackID:  int64(i + 1),
			SongName: "Track",
			SongSrc:  "/uploads/files/track.mp3",
		})
	}
	return out
}

func onceSchedule(id int64, startDate, endDate, startTime, endTime string) model.Schedule {
	return model.Schedule{
		ID:         id,
		Name:       "Schedule",
		StartDate:  startDate,
		EndDate:    endDate,
		StartTime:  startTime,
		EndTime:    endTime,
		RepeatType: model.RepeatNone,
		Playlist:   playlist(1),
	}
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	require.NoError(t, err)
	return ts
}

func TestEvaluateEmptySet(t *testing.T) {
	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), nil, nil)
	assert.False(t, ok)
}

func TestEvaluateSingleOccurring(t *testing.T) {
	s := onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "10:00:00")

	cand, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	require.True(t, ok)
	assert.Equal(t, int64(1), cand.Schedule.ID)
	assert.Equal(t, mustTime(t, "2024-06-01 09:00:00"), cand.Start)
}

func TestEvaluateWindowBoundaries(t *testing.T) {
	s := onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "10:00:00")

	// boundaries are inclusive
	_, ok := Evaluate(mustTime(t, "2024-06-01 09:00:00"), []model.Schedule{s}, nil)
	assert.True(t, ok)
	_, ok = Evaluate(mustTime(t, "2024-06-01 10:00:00"), []model.Schedule{s}, nil)
	assert.True(t, ok)

	// one second past the end is inactive
	_, ok = Evaluate(mustTime(t, "2024-06-01 10:00:01"), []model.Schedule{s}, nil)
	assert.False(t, ok)
	_, ok = Evaluate(mustTime(t, "2024-06-01 08:59:59"), []model.Schedule{s}, nil)
	assert.False(t, ok)
}

func TestEvaluateLatestStartWins(t *testing.T) {
	a := onceSchedule(1, "2024-06-01", "2024-06-01", "08:00:00", "12:00:00")
	b := onceSchedule(2, "2024-06-01", "2024-06-01", "09:00:00", "11:00:00")

	cand, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{a, b}, nil)
	require.True(t, ok)
	assert.Equal(t, int64(2), cand.Schedule.ID)
}

func TestEvaluateTieKeepsLowestID(t *testing.T) {
	a := onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "12:00:00")
	b := onceSchedule(2, "2024-06-01", "2024-06-01", "09:00:00", "11:00:00")

	cand, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{b, a}, nil)
	require.True(t, ok)
	assert.Equal(t, int64(1), cand.Schedule.ID)
}

func TestEvaluateDeterministic(t *testing.T) {
	set := []model.Schedule{
		onceSchedule(3, "2024-06-01", "2024-06-01", "09:00:00", "12:00:00"),
		onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "12:00:00"),
		onceSchedule(2, "2024-06-01", "2024-06-01", "08:00:00", "12:00:00"),
	}
	now := mustTime(t, "2024-06-01 09:30:00")

	first, ok := Evaluate(now, set, nil)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := Evaluate(now, set, nil)
		require.True(t, ok)
		assert.Equal(t, first.Schedule.ID, again.Schedule.ID)
	}
}

func TestEvaluateEmptyPlaylistInert(t *testing.T) {
	s := onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "10:00:00")
	s.Playlist = nil

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)
}

func TestEvaluateMalformedTimeExcluded(t *testing.T) {
	bad := onceSchedule(1, "2024-06-01", "2024-06-01", "9am", "10:00:00")
	good := onceSchedule(2, "2024-06-01", "2024-06-01", "09:00:00", "10:00:00")

	cand, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{bad, good}, nil)
	require.True(t, ok)
	assert.Equal(t, int64(2), cand.Schedule.ID)
}

func TestEvaluateUnknownRepeatTypeExcluded(t *testing.T) {
	s := onceSchedule(1, "2024-06-01", "2024-06-01", "09:00:00", "10:00:00")
	s.RepeatType = "fortnightly"

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)
}

func TestEvaluateWeeklyGatesOnWeekday(t *testing.T) {
	// 2024-06-01 is a Saturday
	s := onceSchedule(1, "2024-05-01", "2024-06-30", "09:00:00", "10:00:00")
	s.RepeatType = model.RepeatWeekly
	s.Weekdays = model.StringList{"Monday"}

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)

	s.Weekdays = model.StringList{"Saturday"}
	cand, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	require.True(t, ok)
	assert.Equal(t, mustTime(t, "2024-06-01 09:00:00"), cand.Start)
}

func TestEvaluateWeeklyShortNames(t *testing.T) {
	s := onceSchedule(1, "2024-05-01", "2024-06-30", "09:00:00", "10:00:00")
	s.RepeatType = model.RepeatWeekly
	s.Weekdays = model.StringList{"sat"}

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.True(t, ok)
}

func TestEvaluateMonthlyGatesOnDay(t *testing.T) {
	s := onceSchedule(1, "2024-01-01", "2024-12-31", "09:00:00", "10:00:00")
	s.RepeatType = model.RepeatMonthly
	s.MonthDates = model.IntList{15}

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)

	_, ok = Evaluate(mustTime(t, "2024-06-15 09:30:00"), []model.Schedule{s}, nil)
	assert.True(t, ok)
}

func TestEvaluateOvernightWindowRollsPastMidnight(t *testing.T) {
	// Friday 22:00 through 02:00 the next morning
	s := onceSchedule(1, "2024-05-01", "2024-06-30", "22:00:00", "02:00:00")
	s.RepeatType = model.RepeatWeekly
	s.Weekdays = model.StringList{"Friday"}

	// Saturday 01:30 still belongs to Friday's occurrence
	cand, ok := Evaluate(mustTime(t, "2024-06-01 01:30:00"), []model.Schedule{s}, nil)
	require.True(t, ok)
	assert.Equal(t, mustTime(t, "2024-05-31 22:00:00"), cand.Start)

	// Saturday 03:00 is past it
	_, ok = Evaluate(mustTime(t, "2024-06-01 03:00:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)
}

func TestEvaluateExceptionSuppressesOccurrence(t *testing.T) {
	s := onceSchedule(1, "2024-05-01", "2024-06-30", "09:00:00", "10:00:00")
	s.RepeatType = model.RepeatWeekly
	s.Weekdays = model.StringList{"Saturday"}

	excepted := map[model.ExceptionKey]bool{
		{ScheduleID: 1, Date: "2024-06-01"}: true,
	}

	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, excepted)
	assert.False(t, ok)

	// the following week is untouched
	_, ok = Evaluate(mustTime(t, "2024-06-08 09:30:00"), []model.Schedule{s}, excepted)
	assert.True(t, ok)
}

func TestEvaluateDateRangeGatesRecurrence(t *testing.T) {
	s := onceSchedule(1, "2024-06-10", "2024-06-30", "09:00:00", "10:00:00")
	s.RepeatType = model.RepeatWeekly
	s.Weekdays = model.StringList{"Saturday"}

	// matching weekday but before the range opens
	_, ok := Evaluate(mustTime(t, "2024-06-01 09:30:00"), []model.Schedule{s}, nil)
	assert.False(t, ok)
}
