package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/http/api"
	adminapi "github.com/sonatech-av/cadenza/internal/http/api/admin/endpoints"
	playerapi "github.com/sonatech-av/cadenza/internal/http/api/player/endpoints"
	"github.com/sonatech-av/cadenza/internal/http/ws"
	"github.com/sonatech-av/cadenza/internal/player"
	"github.com/sonatech-av/cadenza/internal/resolver"
	"github.com/sonatech-av/cadenza/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	storageSystem storage.Storage,
	resolverService *resolver.Service,
	session *player.Session,
	hub *ws.Hub,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	// the player page and the operator UI share one origin on a single-box
	// install, so every module mounts at the root prefix
	api.MountGroup(r, api.GroupConfig{Prefix: ""},
		adminapi.TrackModule(store, storageSystem),
		adminapi.ScheduleModule(store),
		playerapi.ActiveModule(resolverService),
		playerapi.PlayerModule(session, store),
		playerapi.WSModule(hub),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads/files", env.UploadDir)
	}
}
