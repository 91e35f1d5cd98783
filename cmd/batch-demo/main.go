// batch-demo pulls raw facts out of the store and recomputes a subset of
// the dashboard aggregations with the in-memory batch engine. It is
// illustrative only: output goes to stdout and nothing is written back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"streaming-analytics/internal/batch"
	"streaming-analytics/internal/config"
	"streaming-analytics/internal/logging"
	"streaming-analytics/internal/models"
	"streaming-analytics/internal/store"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	topN := flag.Int("top", 20, "number of movies in the content performance view")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load config")
		exitCode = 1
		return
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})
	log := logging.With("batch-demo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := store.Connect(ctx, cfg.Store.MongoURL, cfg.Store.Database)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to store")
		exitCode = 1
		return
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		_ = st.Close(closeCtx)
	}()

	var sessions []models.ViewingSession
	if err := st.Find(ctx, models.CollSessions, nil, nil, &sessions); err != nil {
		log.Error().Err(err).Msg("failed to load sessions")
		exitCode = 1
		return
	}
	var movies []models.Movie
	if err := st.Find(ctx, models.CollMovies, nil, nil, &movies); err != nil {
		log.Error().Err(err).Msg("failed to load movies")
		exitCode = 1
		return
	}
	log.Info().Int("sessions", len(sessions)).Int("movies", len(movies)).Msg("facts loaded")

	daily, err := batch.DailyRollups(sessions)
	if err != nil {
		log.Error().Err(err).Msg("daily rollup failed")
		exitCode = 1
		return
	}
	genres, orphans := batch.GenreRollups(sessions, movies)

	report := map[string]interface{}{
		"device_analytics":        batch.DeviceAnalytics(sessions),
		"hourly_peaks":            batch.HourlyPeaks(sessions),
		"content_performance":     batch.TopContent(sessions, movies, *topN),
		"quality_monitoring":      batch.QualityMonitoring(sessions),
		"geographic_distribution": batch.GeographicDistribution(sessions),
		"daily_rollups":           daily,
		"genre_rollups":           genres,
		"orphan_sessions":         orphans,
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal report")
		exitCode = 1
		return
	}
	fmt.Println(string(out))
}
