package endpoints

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/http/api"
	"github.com/sonatech-av/cadenza/internal/http/api/admin/packets"
	"github.com/sonatech-av/cadenza/internal/model"
)

type ScheduleController struct {
	store db.Store
}

func NewScheduleController(store db.Store) *ScheduleController {
	return &ScheduleController{store: store}
}

func ScheduleModule(store db.Store) api.Module {
	ctl := NewScheduleController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules", ctl.listSchedules)
		c.POST("/schedules", ctl.createSchedule)
		c.PUT("/schedules/:id", ctl.updateSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)
		c.GET("/schedule-logs", ctl.listLogs)
	})
}

// validatePayload checks the fields binding cannot express. The payload
// dates and times stay strings end to end, so parse them here once.
func validatePayload(p packets.SchedulePayload) *api.APIError {
	if _, err := time.Parse("2006-01-02", p.StartDate); err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: "startDate must be YYYY-MM-DD"}
	}
	if _, err := time.Parse("2006-01-02", p.EndDate); err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: "endDate must be YYYY-MM-DD"}
	}
	if p.StartDate > p.EndDate {
		return &api.APIError{Code: http.StatusBadRequest, Message: "startDate must not be after endDate"}
	}
	if _, err := parseClock(p.StartTime); err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: "startTime must be HH:MM or HH:MM:SS"}
	}
	if _, err := parseClock(p.EndTime); err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: "endTime must be HH:MM or HH:MM:SS"}
	}
	switch p.RepeatType {
	case "", model.RepeatNone, model.RepeatWeekly, model.RepeatMonthly:
	default:
		return &api.APIError{Code: http.StatusBadRequest, Message: "repeatType must be none, weekly or monthly"}
	}
	for _, d := range p.MonthDates {
		if d < 1 || d > 31 {
			return &api.APIError{Code: http.StatusBadRequest, Message: "monthDates entries must be 1-31"}
		}
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}

func scheduleFromPayload(p packets.SchedulePayload) model.Schedule {
	repeat := p.RepeatType
	if repeat == "" {
		repeat = model.RepeatNone
	}
	weekdays := p.Weekdays
	if weekdays == nil {
		weekdays = []string{}
	}
	monthDates := p.MonthDates
	if monthDates == nil {
		monthDates = []int{}
	}
	playlist := p.Playlist
	if playlist == nil {
		playlist = []model.PlaylistEntry{}
	}
	return model.Schedule{
		Name:       p.ScheduleName,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		RepeatType: repeat,
		Weekdays:   model.StringList(weekdays),
		MonthDates: model.IntList(monthDates),
		Playlist:   playlist,
	}
}

func (s *ScheduleController) listSchedules(ctx *gin.Context) (any, *api.APIError) {
	schedules, err := s.store.ListSchedules()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}
	for i := range schedules {
		if err := schedules[i].DecodePlaylist(); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "corrupt playlist data"}
		}
	}
	return schedules, nil
}

func (s *ScheduleController) createSchedule(ctx *gin.Context) (any, *api.APIError) {
	var payload packets.SchedulePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "All fields are required"}
	}
	if apiErr := validatePayload(payload); apiErr != nil {
		return nil, apiErr
	}

	created, err := s.store.CreateSchedule(scheduleFromPayload(payload))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB insertion failed"}
	}
	return packets.CreateScheduleResponse{Message: "Schedule created successfully!", ScheduleID: created.ID}, nil
}

func (s *ScheduleController) updateSchedule(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	var payload packets.SchedulePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "All fields are required"}
	}
	if apiErr := validatePayload(payload); apiErr != nil {
		return nil, apiErr
	}

	if err := s.store.UpdateSchedule(id, scheduleFromPayload(payload)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB update failed"}
	}
	return packets.MessageResponse{Message: fmt.Sprintf("Schedule %d updated", id)}, nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context) (any, *api.APIError) {
	rawID := ctx.Param("id")
	if rawID == "all" {
		if err := s.store.DeleteAllSchedules(); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB delete failed"}
		}
		return packets.MessageResponse{Message: "All schedules deleted"}, nil
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	schedule, err := s.store.GetSchedule(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}

	mode := ctx.DefaultQuery("mode", "all")
	switch mode {
	case "occurrence":
		dates := ctx.QueryArray("date")
		if len(dates) == 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "mode=occurrence requires at least one date"}
		}
		if schedule.RepeatType == model.RepeatNone {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "occurrence deletion only applies to recurring schedules"}
		}
		for _, d := range dates {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return nil, &api.APIError{Code: http.StatusBadRequest, Message: "date must be YYYY-MM-DD"}
			}
		}
		for _, d := range dates {
			if err := s.store.CreateScheduleException(id, d); err != nil {
				return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB insertion failed"}
			}
		}
	default:
		// any other mode removes the whole schedule; the mode is echoed back
		// so the client can distinguish what it asked for
		if err := s.store.DeleteSchedule(id); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB delete failed"}
		}
	}

	return packets.MessageResponse{Message: fmt.Sprintf("Schedule %d deleted (mode=%s)", id, mode)}, nil
}

func (s *ScheduleController) listLogs(ctx *gin.Context) (any, *api.APIError) {
	logs, err := s.store.ListActivationLogs()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}
	return logs, nil
}
