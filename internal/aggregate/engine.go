// Package aggregate implements the aggregation engine: full, idempotent
// recomputation of the three derived views from the raw fact stream.
//
// Numeric semantics: every avg_* field is an arithmetic mean over the
// group's raw values, rounded to 2 decimals half away from zero.
package aggregate

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"streaming-analytics/internal/logging"
	"streaming-analytics/internal/models"
)

// ErrNoFacts signals that aggregation was invoked before any entities or
// facts were loaded. An empty rollup and a not-yet-loaded store are
// different conditions to a caller, so this is surfaced rather than
// silently producing empty views.
var ErrNoFacts = errors.New("aggregate: no facts loaded")

// Staging collection names used for the atomic view swap.
const (
	stagingDaily = models.CollDaily + "_staging"
	stagingGenre = models.CollGenre + "_staging"
)

// Store is the subset of the store contract the engine needs.
type Store interface {
	Count(ctx context.Context, collection string, filter interface{}) (int64, error)
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error
	InsertMany(ctx context.Context, collection string, docs []interface{}) error
	UpdateFields(ctx context.Context, collection, id string, fields bson.M) error
	DeleteAll(ctx context.Context, collection string) error
	SwapCollection(ctx context.Context, staging, live string) error
}

type Engine struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

func New(store Store) *Engine {
	return &Engine{
		store: store,
		log:   logging.With("aggregate"),
		now:   time.Now,
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecomputeAll runs the three view recomputations in order: movie
// statistics, daily rollup, genre rollup.
func (e *Engine) RecomputeAll(ctx context.Context) error {
	if err := e.checkFactsLoaded(ctx); err != nil {
		return err
	}
	if err := e.RecomputeMovieStats(ctx); err != nil {
		return err
	}
	if err := e.RecomputeDailyRollup(ctx); err != nil {
		return err
	}
	return e.RecomputeGenreRollup(ctx)
}

func (e *Engine) checkFactsLoaded(ctx context.Context) error {
	movies, err := e.store.Count(ctx, models.CollMovies, nil)
	if err != nil {
		return err
	}
	sessions, err := e.store.Count(ctx, models.CollSessions, nil)
	if err != nil {
		return err
	}
	if movies == 0 && sessions == 0 {
		return ErrNoFacts
	}
	return nil
}

type movieStatsRow struct {
	MovieID           string  `bson:"_id"`
	TotalViews        int64   `bson:"total_views"`
	AvgCompletionRate float64 `bson:"avg_completion_rate"`
	TotalWatchTime    int64   `bson:"total_watch_time"`
}

// RecomputeMovieStats overwrites the cached statistics fields on every
// movie that has at least one session. Movies with zero sessions keep
// their previous values; their stats_computed_at marker is not advanced,
// so staleness stays observable. Updates are per movie with no
// transaction across them: a failure mid-run leaves a mix of updated and
// stale movies, and statistics must be read as eventually consistent
// within a run.
func (e *Engine) RecomputeMovieStats(ctx context.Context) error {
	var rows []movieStatsRow
	if err := e.store.Aggregate(ctx, models.CollSessions, MovieStatsPipeline(), &rows); err != nil {
		return err
	}

	computedAt := e.now().UTC()
	for _, row := range rows {
		err := e.store.UpdateFields(ctx, models.CollMovies, row.MovieID, bson.M{
			"total_views":              row.TotalViews,
			"avg_completion_rate":      Round2(row.AvgCompletionRate),
			"total_watch_time_minutes": row.TotalWatchTime,
			"stats_computed_at":        computedAt,
		})
		if err != nil {
			return err
		}
	}

	e.log.Info().Int("movies_updated", len(rows)).Msg("movie statistics recomputed")
	return nil
}

type dailyRow struct {
	Date              string   `bson:"_id"`
	TotalViews        int64    `bson:"total_views"`
	UniqueUsers       int64    `bson:"unique_users"`
	TotalWatchTime    int64    `bson:"total_watch_time"`
	AvgCompletionRate float64  `bson:"avg_completion_rate"`
	DeviceBreakdown   []string `bson:"device_breakdown"`
}

// RecomputeDailyRollup rebuilds the per-date view from scratch. The new
// set is written fully to a staging collection and published with one
// atomic swap, so concurrent readers never observe a half-written or
// transiently empty view. Zero sessions publish zero rows; that is not
// an error.
func (e *Engine) RecomputeDailyRollup(ctx context.Context) error {
	var rows []dailyRow
	if err := e.store.Aggregate(ctx, models.CollSessions, DailyRollupPipeline(), &rows); err != nil {
		return err
	}

	createdAt := e.now().UTC().Format(time.RFC3339)
	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.DailyRollup{
			ID:                row.Date,
			Date:              row.Date,
			TotalViews:        row.TotalViews,
			UniqueUsers:       row.UniqueUsers,
			TotalWatchTime:    row.TotalWatchTime,
			AvgCompletionRate: Round2(row.AvgCompletionRate),
			DeviceBreakdown:   row.DeviceBreakdown,
			CreatedAt:         createdAt,
		})
	}

	if err := e.publish(ctx, stagingDaily, models.CollDaily, docs); err != nil {
		return err
	}
	e.log.Info().Int("days", len(docs)).Msg("daily rollup recomputed")
	return nil
}

type genreRow struct {
	Genre             string  `bson:"_id"`
	TotalViews        int64   `bson:"total_views"`
	AvgWatchTime      float64 `bson:"avg_watch_time"`
	AvgCompletionRate float64 `bson:"avg_completion_rate"`
	UniqueUsers       int64   `bson:"unique_users"`
}

// RecomputeGenreRollup rebuilds the per-genre view. Sessions referencing
// a missing movie are dropped by the inner join; the orphan count is
// surfaced in the log so the data loss is observable rather than silent.
func (e *Engine) RecomputeGenreRollup(ctx context.Context) error {
	var rows []genreRow
	if err := e.store.Aggregate(ctx, models.CollSessions, GenreRollupPipeline(), &rows); err != nil {
		return err
	}

	createdAt := e.now().UTC().Format(time.RFC3339)
	var joined int64
	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		joined += row.TotalViews
		docs = append(docs, models.GenreRollup{
			ID:                row.Genre,
			Genre:             row.Genre,
			TotalViews:        row.TotalViews,
			AvgWatchTime:      Round2(row.AvgWatchTime),
			AvgCompletionRate: Round2(row.AvgCompletionRate),
			UniqueUsers:       row.UniqueUsers,
			CreatedAt:         createdAt,
		})
	}

	if err := e.publish(ctx, stagingGenre, models.CollGenre, docs); err != nil {
		return err
	}

	total, err := e.store.Count(ctx, models.CollSessions, nil)
	if err != nil {
		return err
	}
	orphans := total - joined

	e.log.Info().
		Int("genres", len(docs)).
		Int64("orphan_sessions", orphans).
		Msg("genre rollup recomputed")
	return nil
}

// publish clears any staging leftovers from a crashed run, writes the
// full replacement set, and swaps it under the live name.
func (e *Engine) publish(ctx context.Context, staging, live string, docs []interface{}) error {
	if err := e.store.DeleteAll(ctx, staging); err != nil {
		return err
	}
	if err := e.store.InsertMany(ctx, staging, docs); err != nil {
		return err
	}
	return e.store.SwapCollection(ctx, staging, live)
}
