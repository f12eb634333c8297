package mapper

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/common/version"
)

func Main(configPath string) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)

	logger.Info().
		Str("version", version.Version).
		Str("revision", version.GetRevision()).
		Str("listen", cfg.ListenAddress).
		Msg("starting axiskey mapper")

	app, err := NewApp(cfg, openStorage(cfg.DataDir))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init app")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start background jobs")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webLogger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()
	webLogger.Info().Str("addr", cfg.ListenAddress).Msg("http server listening")

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		webLogger.Warn().Err(err).Msg("http server shutdown")
	}
	if err := app.Close(); err != nil {
		logger.Warn().Err(err).Msg("app shutdown")
	}
	if err := app.store.Save(); err != nil {
		storeLogger.Warn().Err(err).Msg("final save failed")
	}
}
