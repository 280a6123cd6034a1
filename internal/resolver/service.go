package resolver

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/model"
)

// Result is the wire shape of the active-schedule lookup.
type Result struct {
	Active   bool            `json:"active"`
	Schedule *model.Schedule `json:"schedule,omitempty"`
}

// Service resolves the active schedule against the schedule store and
// appends the start audit entry for the winner. It holds no state between
// calls; the result is recomputed on every invocation.
type Service struct {
	store db.Store
}

func NewService(store db.Store) *Service {
	return &Service{store: store}
}

// Active computes the active schedule at now. Schedules whose playlist
// document fails validation are excluded from the occurring set and logged,
// never surfaced as an error to the caller.
func (s *Service) Active(now time.Time) (Result, error) {
	schedules, err := s.store.ListSchedules()
	if err != nil {
		return Result{}, err
	}
	exceptions, err := s.store.ListScheduleExceptions()
	if err != nil {
		return Result{}, err
	}

	eligible := make([]model.Schedule, 0, len(schedules))
	for i := range schedules {
		if err := schedules[i].DecodePlaylist(); err != nil {
			log.Error().Err(err).Int64("schedule_id", schedules[i].ID).
				Msg("schedule excluded from resolution")
			continue
		}
		eligible = append(eligible, schedules[i])
	}

	cand, ok := Evaluate(now, eligible, exceptions)
	if !ok {
		return Result{Active: false}, nil
	}

	// the winning schedule gets at most one start entry per occurrence
	// episode; a failed append must not fail the resolution itself
	if _, err := s.store.LogActivationOnce(cand.Schedule.ID, cand.Schedule.Name, cand.Start, now); err != nil {
		log.Error().Err(err).Int64("schedule_id", cand.Schedule.ID).
			Msg("failed to append activation log")
	}

	sc := cand.Schedule
	return Result{Active: true, Schedule: &sc}, nil
}
