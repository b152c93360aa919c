// Package server assembles the HTTP API around the report service.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/obs-tools/visit-atlas/pkg/handlers/report"
	"github.com/obs-tools/visit-atlas/pkg/cache"
	visitatlasmiddleware "github.com/obs-tools/visit-atlas/pkg/server/middleware"
	"github.com/obs-tools/visit-atlas/pkg/services/report"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Reports *report.Service
	Cache   *cache.QueryCache
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	reportHandler := handlers.NewHandler(config.Dependencies.Reports, config.Dependencies.Cache)

	router := chi.NewRouter()

	router.Use(visitatlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports/{dimension}", reportHandler.GetDimensionReport)
		r.Get("/dashboard", reportHandler.GetDashboard)
		r.Get("/activity", reportHandler.GetActivitySummary)
		r.Get("/zones", reportHandler.ListZones)
		r.Get("/periods", reportHandler.ListPeriods)

		r.Get("/cache/stats", reportHandler.GetCacheStats)
		r.Delete("/cache", reportHandler.PurgeCache)
		r.Delete("/cache/{category}", reportHandler.PurgeCacheCategory)
	})

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler exposes the routed mux, mainly for tests.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
