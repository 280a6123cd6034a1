package db

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/model"
)

const scheduleColumns = `
	id, schedule_name, start_date, end_date, start_time, end_time,
	repeat_type, weekdays, month_dates, playlist, created_at, updated_at`

func CreateSchedule(s model.Schedule) (model.Schedule, error) {
	playlist, err := model.EncodePlaylist(s.Playlist)
	if err != nil {
		log.Error().Err(err).Msg("CreateSchedule: playlist encode failed")
		return model.Schedule{}, err
	}

	var out model.Schedule
	const q = `
	INSERT INTO schedules
	  (schedule_name, start_date, end_date, start_time, end_time,
	   repeat_type, weekdays, month_dates, playlist, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	RETURNING ` + scheduleColumns + `;`
	if err := DB.Get(&out, q,
		s.Name, s.StartDate, s.EndDate, s.StartTime, s.EndTime,
		s.RepeatType, s.Weekdays, s.MonthDates, string(playlist),
	); err != nil {
		log.Error().Err(err).Msg("CreateSchedule failed")
		return model.Schedule{}, err
	}
	return out, nil
}

func GetSchedule(id int64) (model.Schedule, error) {
	var s model.Schedule
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?;`
	err := DB.Get(&s, q, id)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Error().Err(err).Int64("schedule_id", id).Msg("GetSchedule failed")
		}
		return model.Schedule{}, err
	}
	return s, nil
}

func ListSchedules() ([]model.Schedule, error) {
	out := []model.Schedule{}
	const q = `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

// UpdateSchedule replaces every operator-editable field of the schedule.
// Edits are a full replace, matching the operator form.
func UpdateSchedule(id int64, s model.Schedule) error {
	playlist, err := model.EncodePlaylist(s.Playlist)
	if err != nil {
		log.Error().Err(err).Msg("UpdateSchedule: playlist encode failed")
		return err
	}

	res, err := DB.Exec(`
	UPDATE schedules
	   SET schedule_name = ?, start_date = ?, end_date = ?,
	       start_time = ?, end_time = ?, repeat_type = ?,
	       weekdays = ?, month_dates = ?, playlist = ?,
	       updated_at = CURRENT_TIMESTAMP
	 WHERE id = ?;`,
		s.Name, s.StartDate, s.EndDate, s.StartTime, s.EndTime,
		s.RepeatType, s.Weekdays, s.MonthDates, string(playlist), id,
	)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", id).Msg("UpdateSchedule failed")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteSchedule(id int64) error {
	_, err := DB.Exec(`DELETE FROM schedules WHERE id = ?;`, id)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", id).Msg("DeleteSchedule failed")
	}
	return err
}

func DeleteAllSchedules() error {
	_, err := DB.Exec(`DELETE FROM schedules;`)
	if err != nil {
		log.Error().Err(err).Msg("DeleteAllSchedules failed")
	}
	return err
}

// CreateScheduleException suppresses a single occurrence date for a
// recurring schedule. Inserting the same exception twice is a no-op.
func CreateScheduleException(scheduleID int64, occurDate string) error {
	_, err := DB.Exec(`
	INSERT INTO schedule_exceptions (schedule_id, occur_date)
	VALUES (?, ?)
	ON CONFLICT DO NOTHING;`, scheduleID, occurDate)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", scheduleID).Str("occur_date", occurDate).
			Msg("CreateScheduleException failed")
	}
	return err
}

// ListScheduleExceptions returns every suppressed occurrence keyed by
// schedule id and date, the shape the resolver consumes.
func ListScheduleExceptions() (map[model.ExceptionKey]bool, error) {
	type row struct {
		ScheduleID int64  `db:"schedule_id"`
		OccurDate  string `db:"occur_date"`
	}
	var rows []row
	if err := DB.Select(&rows, `SELECT schedule_id, occur_date FROM schedule_exceptions;`); err != nil {
		log.Error().Err(err).Msg("ListScheduleExceptions failed")
		return nil, err
	}
	out := make(map[model.ExceptionKey]bool, len(rows))
	for _, r := range rows {
		out[model.ExceptionKey{ScheduleID: r.ScheduleID, Date: r.OccurDate}] = true
	}
	return out, nil
}
