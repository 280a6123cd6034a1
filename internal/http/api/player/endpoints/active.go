package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sonatech-av/cadenza/internal/http/api"
	"github.com/sonatech-av/cadenza/internal/resolver"
)

type ActiveController struct {
	resolver *resolver.Service
}

func NewActiveController(svc *resolver.Service) *ActiveController {
	return &ActiveController{resolver: svc}
}

func ActiveModule(svc *resolver.Service) api.Module {
	ctl := NewActiveController(svc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules/active", ctl.activeSchedule)
	})
}

func (a *ActiveController) activeSchedule(ctx *gin.Context) (any, *api.APIError) {
	result, err := a.resolver.Active(time.Now())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "DB error"}
	}
	return result, nil
}
