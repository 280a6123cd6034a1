package endpoints

import (
	"github.com/sonatech-av/cadenza/internal/http/api"
	"github.com/sonatech-av/cadenza/internal/http/ws"
)

func WSModule(hub *ws.Hub) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.Raw("GET", "/ws/player", hub.Serve)
	})
}
