// Package api exposes the materialized views over HTTP. It is a thin
// read layer: handlers serve the pre-computed views and a small set of
// enumerated real-time fallbacks, never derived state of their own.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streaming-analytics/internal/logging"
)

// Store is the read-side subset of the store contract.
type Store interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context, collection string, filter interface{}) (int64, error)
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error
	Find(ctx context.Context, collection string, filter interface{}, opts *options.FindOptions, out interface{}) error
}

type Server struct {
	store Store
	// runETL triggers a full pipeline run; wired by the caller so the
	// read layer stays decoupled from the orchestrator.
	runETL func(ctx context.Context) error
	log    zerolog.Logger
}

func NewServer(store Store, runETL func(ctx context.Context) error) *Server {
	return &Server{
		store:  store,
		runETL: runETL,
		log:    logging.With("api"),
	}
}

// Router assembles the chi router with the /api route group.
func (s *Server) Router(corsOrigins string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(corsOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/health", s.handleHealth)

		r.Get("/dashboard/metrics", s.handleDashboardMetrics)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/top-movies", s.handleTopMovies)
			r.Get("/genres", s.handleGenres)
			r.Get("/daily-trends", s.handleDailyTrends)
			r.Get("/devices", s.handleDevices)
			r.Get("/geographic", s.handleGeographic)
			r.Get("/hourly-trends", s.handleHourlyTrends)
			r.Get("/users", s.handleUserAnalytics)
		})

		r.With(requireRole(RoleAdmin)).Post("/admin/run-etl", s.handleRunETL)
	})

	return r
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return []string{"*"}
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
