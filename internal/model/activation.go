package model

import "time"

// ActivationLog is one audit row per activation episode. Rows are appended
// by the resolver when a schedule first becomes active and closed by the
// activation bridge when the END transition is observed.
type ActivationLog struct {
	ID           int64      `db:"id"            json:"id"`
	ScheduleID   int64      `db:"schedule_id"   json:"scheduleId"`
	ScheduleName string     `db:"schedule_name" json:"scheduleName"`
	StartedAt    time.Time  `db:"started_at"    json:"startedAt"`
	EndedAt      *time.Time `db:"ended_at"      json:"endedAt,omitempty"`
}
