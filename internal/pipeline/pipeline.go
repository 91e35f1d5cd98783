// Package pipeline sequences the load, index and aggregate phases and
// enforces the idempotent re-run guard.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"streaming-analytics/internal/config"
	"streaming-analytics/internal/generator"
	"streaming-analytics/internal/logging"
	"streaming-analytics/internal/models"
)

// Store is the subset of the store contract the orchestrator needs.
type Store interface {
	Count(ctx context.Context, collection string, filter interface{}) (int64, error)
	InsertMany(ctx context.Context, collection string, docs []interface{}) error
	CreateIndexes(ctx context.Context, collection string, indexes []mongo.IndexModel) error
}

// Aggregator runs the three derived-view recomputations.
type Aggregator interface {
	RecomputeAll(ctx context.Context) error
}

type Pipeline struct {
	cfg   *config.Config
	store Store
	agg   Aggregator
	gen   *generator.Generator
	state State
	log   zerolog.Logger
}

func New(cfg *config.Config, store Store, agg Aggregator) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: store,
		agg:   agg,
		gen:   generator.New(cfg.Generator.Seed),
		state: StateNotStarted,
		log:   logging.With("pipeline"),
	}
}

func (p *Pipeline) State() State { return p.state }

// Run drives the pipeline end to end. Phases are strictly sequential;
// cancellation takes effect at phase boundaries only. Any failure moves
// the pipeline to Failed, is logged, and propagates without retry. The
// store handle itself is owned by the caller and released there
// regardless of outcome.
func (p *Pipeline) Run(ctx context.Context) error {
	phases := []struct {
		state State
		run   func(context.Context) error
	}{
		{StateLoading, p.load},
		{StateIndexing, p.index},
		{StateAggregating, p.aggregate},
	}

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return p.fail(phase.state, err)
		}
		p.state = phase.state
		p.log.Info().Stringer("state", p.state).Msg("phase started")
		if err := phase.run(ctx); err != nil {
			return p.fail(phase.state, err)
		}
	}

	p.state = StateDone
	p.log.Info().Stringer("state", p.state).Msg("pipeline completed")
	return nil
}

func (p *Pipeline) fail(s State, err error) error {
	p.state = StateFailed
	wrapped := fmt.Errorf("%s phase: %w", s, err)
	p.log.Error().Err(wrapped).Stringer("state", p.state).Msg("pipeline failed")
	return wrapped
}

// load generates and persists the four record sets unless the movie
// collection is already populated. The guard makes re-runs idempotent
// under a single-writer assumption; two concurrent runs can both see an
// empty collection and both insert. There is no locking.
func (p *Pipeline) load(ctx context.Context) error {
	existing, err := p.store.Count(ctx, models.CollMovies, nil)
	if err != nil {
		return err
	}
	if existing > 0 {
		p.log.Info().Int64("movies", existing).Msg("data already loaded, skipping generation")
		return nil
	}

	hist := hdrhistogram.New(1, 60_000, 3) // batch insert latency, ms

	movies := p.gen.Movies(p.cfg.Generator.Movies)
	if err := p.insertBatched(ctx, models.CollMovies, asDocs(movies), hist); err != nil {
		return err
	}
	p.log.Info().Int("count", len(movies)).Msg("movies loaded")

	users := p.gen.Users(p.cfg.Generator.Users)
	if err := p.insertBatched(ctx, models.CollUsers, asDocs(users), hist); err != nil {
		return err
	}
	p.log.Info().Int("count", len(users)).Msg("users loaded")

	sessions, err := p.gen.Sessions(p.cfg.Generator.Sessions)
	if err != nil {
		return err
	}
	if err := p.insertBatched(ctx, models.CollSessions, asDocs(sessions), hist); err != nil {
		return err
	}
	p.log.Info().Int("count", len(sessions)).Msg("viewing sessions loaded")

	ratings, err := p.gen.Ratings(p.cfg.Generator.Ratings)
	if err != nil {
		return err
	}
	if err := p.insertBatched(ctx, models.CollRatings, asDocs(ratings), hist); err != nil {
		return err
	}
	p.log.Info().Int("count", len(ratings)).Msg("ratings loaded")

	p.log.Info().
		Float64("mean_ms", hist.Mean()).
		Int64("p95_ms", hist.ValueAtQuantile(95)).
		Int64("p99_ms", hist.ValueAtQuantile(99)).
		Msg("batch insert latency")
	return nil
}

func (p *Pipeline) insertBatched(ctx context.Context, collection string, docs []interface{}, hist *hdrhistogram.Histogram) error {
	batch := p.cfg.Store.BatchSize
	for i := 0; i < len(docs); i += batch {
		end := i + batch
		if end > len(docs) {
			end = len(docs)
		}
		start := time.Now()
		if err := p.store.InsertMany(ctx, collection, docs[i:end]); err != nil {
			return err
		}
		_ = hist.RecordValue(time.Since(start).Milliseconds())
	}
	return nil
}

func asDocs[T any](records []T) []interface{} {
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	return docs
}

// index declares the access-pattern indexes used by the read side. This
// is a performance hint; aggregation output is identical without it.
func (p *Pipeline) index(ctx context.Context) error {
	for collection, indexes := range readIndexes() {
		if err := p.store.CreateIndexes(ctx, collection, indexes); err != nil {
			return err
		}
	}
	p.log.Info().Msg("indexes created")
	return nil
}

func (p *Pipeline) aggregate(ctx context.Context) error {
	return p.agg.RecomputeAll(ctx)
}
