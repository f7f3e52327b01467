package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stormwatch.io/internal/alert"
	"stormwatch.io/internal/auth"
	"stormwatch.io/internal/config"
	"stormwatch.io/internal/httpapi"
	"stormwatch.io/internal/obs"
	"stormwatch.io/internal/session"
	"stormwatch.io/internal/store"
	"stormwatch.io/internal/stream"
	"stormwatch.io/internal/token"
	"stormwatch.io/internal/weather"
)

var (
	version = "0.4.0"
	commit  = "none"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("STORMWATCH_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = version
	}

	obs.InitLogger(cfg.Log.Level, cfg.Log.Pretty)
	obs.Init()
	obs.InitBuildInfo(cfg.App.Version, commit)

	mem := store.NewMemory()
	sessions := session.NewManager()

	tokens, err := token.NewService(cfg.Auth.JWTSecret,
		token.WithAccessTTL(cfg.Auth.AccessTTL),
		token.WithRefreshTTL(cfg.Auth.RefreshTTL),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init token service")
	}

	flow := auth.NewFlow(tokens, sessions, mem)

	registry := stream.NewRegistry(func(userID string) (string, bool) {
		city, err := mem.CityFor(context.Background(), userID)
		if err != nil {
			return "", false
		}
		return city.CityName, true
	})
	dispatcher := alert.NewDispatcher(registry)
	weatherSvc := weather.NewService(mem, cfg.Weather.GeocodingURL, cfg.Weather.HTTPTimeout)

	api := httpapi.New(cfg, flow, mem, weatherSvc, registry, dispatcher)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		// The websocket endpoint holds connections open indefinitely; a write
		// timeout here would sever them.
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	log.Info().Str("addr", srv.Addr).Str("version", cfg.App.Version).Msg("starting stormwatch-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)

	log.Info().Msg("stopped")
}
