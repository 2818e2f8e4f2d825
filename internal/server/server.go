// Package server boots the HTTP server and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saristore/saristore/app/routes"
	"github.com/saristore/saristore/config"
	"github.com/saristore/saristore/pkg/cache"
	"github.com/saristore/saristore/pkg/database"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/metrics"
	"github.com/saristore/saristore/pkg/middleware"
	"github.com/saristore/saristore/pkg/reqid"
	"github.com/saristore/saristore/pkg/router"
	"github.com/saristore/saristore/pkg/schedule"
	"github.com/saristore/saristore/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start boots config, database, cache and storage, mounts the routes and
// serves until SIGINT/SIGTERM, then drains in-flight requests.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}

	// Redis is optional: alert dedup falls back to the in-process map.
	if err := cache.Connect(); err != nil {
		logger.Warn("cache unavailable, using in-process fallback", "error", err)
	}

	storage.Connect()

	go routes.AlertHub.Run()

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	schedule.Daily().Name("low-stock-sweep").WithoutOverlapping().Run(func() {
		if err := routes.Alerts.Sweep(database.DB); err != nil {
			logger.Error("low-stock sweep failed", "error", err)
		}
	})
	schedule.Start(schedCtx)

	r := router.New()
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		metrics.Middleware(),
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	routes.RegisterAPI(r, database.DB)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
