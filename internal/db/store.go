// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sonatech-av/cadenza/internal/model"
)

type Store interface {
	// track functions
	CreateTrack(name, artist, filePath string, duration int) (model.Track, error)
	GetTrackByID(id int64) (model.Track, error)
	ListTracks() ([]model.Track, error)
	DeleteTrack(id int64) error

	// schedule functions
	CreateSchedule(s model.Schedule) (model.Schedule, error)
	GetSchedule(id int64) (model.Schedule, error)
	ListSchedules() ([]model.Schedule, error)
	UpdateSchedule(id int64, s model.Schedule) error
	DeleteSchedule(id int64) error
	DeleteAllSchedules() error
	CreateScheduleException(scheduleID int64, occurDate string) error
	ListScheduleExceptions() (map[model.ExceptionKey]bool, error)

	// activation audit functions
	LogActivationOnce(scheduleID int64, scheduleName string, occurrenceStart, now time.Time) (bool, error)
	CloseActivationLog(scheduleID int64, endedAt time.Time) error
	ListActivationLogs() ([]model.ActivationLog, error)
}

type sqlStore struct {
	db *sqlx.DB
}

// compile-time check that sqlStore implements Store
var _ Store = (*sqlStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	if conn == nil {
		conn = DB
	}
	return &sqlStore{db: conn}
}

func (s *sqlStore) CreateTrack(name, artist, filePath string, duration int) (model.Track, error) {
	return CreateTrack(name, artist, filePath, duration)
}

func (s *sqlStore) GetTrackByID(id int64) (model.Track, error) { return GetTrackByID(id) }

func (s *sqlStore) ListTracks() ([]model.Track, error) { return ListTracks() }

func (s *sqlStore) DeleteTrack(id int64) error { return DeleteTrack(id) }

func (s *sqlStore) CreateSchedule(sc model.Schedule) (model.Schedule, error) {
	return CreateSchedule(sc)
}

func (s *sqlStore) GetSchedule(id int64) (model.Schedule, error) { return GetSchedule(id) }

func (s *sqlStore) ListSchedules() ([]model.Schedule, error) { return ListSchedules() }

func (s *sqlStore) UpdateSchedule(id int64, sc model.Schedule) error {
	return UpdateSchedule(id, sc)
}

func (s *sqlStore) DeleteSchedule(id int64) error { return DeleteSchedule(id) }

func (s *sqlStore) DeleteAllSchedules() error { return DeleteAllSchedules() }

func (s *sqlStore) CreateScheduleException(scheduleID int64, occurDate string) error {
	return CreateScheduleException(scheduleID, occurDate)
}

func (s *sqlStore) ListScheduleExceptions() (map[model.ExceptionKey]bool, error) {
	return ListScheduleExceptions()
}

func (s *sqlStore) LogActivationOnce(scheduleID int64, scheduleName string, occurrenceStart, now time.Time) (bool, error) {
	return LogActivationOnce(scheduleID, scheduleName, occurrenceStart, now)
}

func (s *sqlStore) CloseActivationLog(scheduleID int64, endedAt time.Time) error {
	return CloseActivationLog(scheduleID, endedAt)
}

func (s *sqlStore) ListActivationLogs() ([]model.ActivationLog, error) {
	return ListActivationLogs()
}
