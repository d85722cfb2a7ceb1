package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-talkjs-bff/internal/config"
	httpapi "github.com/tbourn/go-talkjs-bff/internal/http"
	"github.com/tbourn/go-talkjs-bff/internal/observability"
	"github.com/tbourn/go-talkjs-bff/internal/sysutil"
	"github.com/tbourn/go-talkjs-bff/internal/talkjs"
)

var version = "dev"

// @title TalkJS BFF API
// @version 1.0
// @description Backend-for-frontend over the TalkJS REST API. Signs requests server-side for the dev or prod application.
// @BasePath /
func main() {
	loadEnvFiles()

	cfg := config.MustLoad()

	sysutil.SetupLogger(os.Stdout, cfg.LogPretty, cfg.OTEL.ServiceName)
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown tracing")
		}
	}()

	client := talkjs.NewClient(talkjs.NewMinter(cfg.TalkJS.Credentials()), talkjs.Options{
		BaseURL: cfg.TalkJS.BaseURL,
		Timeout: cfg.TalkJS.Timeout,
	})
	warnMissingCredentials(cfg.TalkJS)

	r := gin.New()
	httpapi.RegisterRoutes(r, client, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	if err := run(ctx, srv, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server exited cleanly")
}

func run(ctx context.Context, srv *http.Server, cfg config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("talkjs", cfg.TalkJS.BaseURL).
			Str("version", version).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// warnMissingCredentials reports unconfigured environments at startup.
// Requests that select them still fail individually with a configuration error.
func warnMissingCredentials(t config.TalkJSConfig) {
	for name, c := range map[string]config.AppCredentials{"dev": t.Dev, "prod": t.Prod} {
		if c.AppID == "" || c.Secret == "" {
			log.Warn().Str("environment", name).Msg("talkjs credentials incomplete")
		}
	}
}

func loadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
