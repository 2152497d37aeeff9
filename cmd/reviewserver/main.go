package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mistakebook/review_server/config"
	"github.com/mistakebook/review_server/internal/api"
	"github.com/mistakebook/review_server/internal/reviewqueue"
	"github.com/mistakebook/review_server/internal/stores/pgstore"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if strings.ToLower(cfg.LogLevel) == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Info().Str("bindAddr", cfg.BindAddr).Str("logLevel", cfg.LogLevel).Msg("loaded-config")

	if cfg.SecretKey == "" {
		log.Fatal().Msg("secret-key must be set")
	}

	if err := pgstore.RunMigrations(cfg.DBMigrationsPath, cfg.DBConnURI); err != nil {
		log.Fatal().Err(err).Msg("could not run migrations")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DBConnURI)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer pool.Close()

	queue := reviewqueue.NewService(pgstore.New(pool))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(api.RequestLogger())

	g := e.Group("/api/v1", api.JWTAuth([]byte(cfg.SecretKey)))
	api.NewService(queue).RegisterRoutes(g)

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: e,
	}
	idleConnsClosed := make(chan struct{})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)

		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
		close(idleConnsClosed)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("")
	}
	<-idleConnsClosed
	log.Info().Msg("server gracefully shutting down")
}
