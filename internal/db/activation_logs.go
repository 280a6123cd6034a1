package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/model"
)

// LogActivationOnce appends a start entry for the winning schedule unless an
// entry for the current occurrence episode already exists. The existence
// check and the insert run as one statement so concurrent resolver
// invocations cannot both pass the check; the partial unique index on open
// episodes backstops it. Returns true when a row was inserted.
func LogActivationOnce(scheduleID int64, scheduleName string, occurrenceStart, now time.Time) (bool, error) {
	// an unclean shutdown can leave an open row from an earlier episode;
	// left alone it would trip the open-episode index on the insert below,
	// so stamp it closed at the new episode's boundary first
	if _, err := DB.Exec(`
	UPDATE schedule_logs
	   SET ended_at = ?
	 WHERE schedule_id = ? AND ended_at IS NULL AND started_at < ?;`,
		occurrenceStart, scheduleID, occurrenceStart); err != nil {
		log.Error().Err(err).Int64("schedule_id", scheduleID).Msg("failed to close stale activation log")
		return false, err
	}

	res, err := DB.Exec(`
	INSERT INTO schedule_logs (schedule_id, schedule_name, started_at)
	SELECT ?, ?, ?
	WHERE NOT EXISTS (
	    SELECT 1 FROM schedule_logs
	     WHERE schedule_id = ?
	       AND started_at >= ?
	       AND ended_at IS NULL
	);`, scheduleID, scheduleName, now, scheduleID, occurrenceStart)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", scheduleID).Msg("LogActivationOnce failed")
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CloseActivationLog stamps ended_at on the open episode of the schedule,
// if one exists. Called by the activation bridge on the END transition.
func CloseActivationLog(scheduleID int64, endedAt time.Time) error {
	_, err := DB.Exec(`
	UPDATE schedule_logs
	   SET ended_at = ?
	 WHERE schedule_id = ? AND ended_at IS NULL;`, endedAt, scheduleID)
	if err != nil {
		log.Error().Err(err).Int64("schedule_id", scheduleID).Msg("CloseActivationLog failed")
	}
	return err
}

func ListActivationLogs() ([]model.ActivationLog, error) {
	out := []model.ActivationLog{}
	const q = `
	SELECT id, schedule_id, schedule_name, started_at, ended_at
	  FROM schedule_logs
	 ORDER BY started_at DESC, id DESC;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListActivationLogs failed")
		return nil, err
	}
	return out, nil
}
