package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sonatech-av/cadenza/internal/bridge"
	"github.com/sonatech-av/cadenza/internal/db"
	"github.com/sonatech-av/cadenza/internal/events"
	"github.com/sonatech-av/cadenza/internal/http/ws"
	"github.com/sonatech-av/cadenza/internal/player"
	"github.com/sonatech-av/cadenza/internal/redis"
	"github.com/sonatech-av/cadenza/internal/resolver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	env := LoadEnvironment()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.Init(env.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	store := db.NewStore(nil)
	storageSystem := InitStorage(env)
	session := player.NewSession()
	resolverService := resolver.NewService(store)

	bus := events.NewBus()
	hub := ws.NewHub()
	go hub.Run(bus.Subscribe())

	var mqttPublisher *events.MQTTPublisher
	if env.MQTTBrokerURL != "" {
		pub, err := events.NewMQTTPublisher(env.MQTTBrokerURL, "cadenza-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		mqttPublisher = pub
		go mqttPublisher.Run(bus.Subscribe())
	}

	activationBridge := bridge.New(resolverService, bus, session, store,
		time.Duration(env.PollInterval)*time.Second)
	if err := activationBridge.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start activation bridge")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, env, store, storageSystem, resolverService, session, hub)

	srv := &http.Server{
		Addr:    env.ServerAddress,
		Handler: r,
	}

	go func() {
		log.Info().Str("address", env.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	activationBridge.Stop()
	bus.Close()
	hub.Close()
	if mqttPublisher != nil {
		mqttPublisher.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
