package endpoints

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/http/api"
	"github.com/sonatech-av/cadenza/internal/http/api/player/packets"
	"github.com/sonatech-av/cadenza/internal/player"
)

type PlayerController struct {
	session *player.Session
	store   db.Store
}

func NewPlayerController(session *player.Session, store db.Store) *PlayerController {
	return &PlayerController{session: session, store: store}
}

func PlayerModule(session *player.Session, store db.Store) api.Module {
	ctl := NewPlayerController(session, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/player/state", ctl.state)
		c.POST("/player/next", ctl.next)
		c.POST("/player/previous", ctl.previous)
		c.POST("/player/toggle", ctl.toggle)
		c.POST("/player/seek", ctl.seek)
		c.POST("/player/ended", ctl.ended)
		c.POST("/player/override", ctl.override)
		c.POST("/player/resume", ctl.resume)
	})
}

func (p *PlayerController) state(ctx *gin.Context) (any, *api.APIError) {
	return p.session.State(), nil
}

func (p *PlayerController) next(ctx *gin.Context) (any, *api.APIError) {
	return p.session.Next(), nil
}

func (p *PlayerController) previous(ctx *gin.Context) (any, *api.APIError) {
	return p.session.Previous(), nil
}

func (p *PlayerController) toggle(ctx *gin.Context) (any, *api.APIError) {
	return p.session.Toggle(), nil
}

func (p *PlayerController) seek(ctx *gin.Context) (any, *api.APIError) {
	var req packets.SeekRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "percent must be between 0 and 100"}
	}
	return p.session.Seek(req.Percent), nil
}

func (p *PlayerController) ended(ctx *gin.Context) (any, *api.APIError) {
	return p.session.Ended(), nil
}

func (p *PlayerController) override(ctx *gin.Context) (any, *api.APIError) {
	var req packets.OverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "trackId is required"}
	}

	track, err := p.store.GetTrackByID(req.TrackID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "song not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}

	return p.session.Override(player.QueueItem{
		TrackID:  track.ID,
		Name:     track.Name,
		Artist:   track.Artist,
		Src:      track.Src(),
		Duration: track.Duration,
	}), nil
}

func (p *PlayerController) resume(ctx *gin.Context) (any, *api.APIError) {
	return p.session.Resume(), nil
}
