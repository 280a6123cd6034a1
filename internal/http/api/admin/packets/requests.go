package packets

import "github.com/sonatech-av/cadenza/internal/model"

// SchedulePayload is the create/update body. Edits are a full replace, so
// the same shape serves both.
type SchedulePayload struct {
	ScheduleName string                `json:"scheduleName" binding:"required"`
	StartDate    string                `json:"startDate" binding:"required"`
	EndDate      string                `json:"endDate" binding:"required"`
	StartTime    string                `json:"startTime" binding:"required"`
	EndTime      string                `json:"endTime" binding:"required"`
	RepeatType   string                `json:"repeatType"`
	Weekdays     []string              `json:"weekdays"`
	MonthDates   []int                 `json:"monthDates"`
	Playlist     []model.PlaylistEntry `json:"playlist"`
}
