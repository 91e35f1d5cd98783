// Package batch is an illustrative in-memory batch engine. It pulls raw
// facts into memory and recomputes a subset of the same aggregations the
// store-side engine materializes, plus a few exploratory views (device
// usage, hourly peaks, content performance). It defines no new contract
// and writes nothing back to the store.
package batch

import (
	"fmt"
	"sort"
	"time"

	"streaming-analytics/internal/aggregate"
	"streaming-analytics/internal/models"
)

// MovieStats mirrors the cached statistics fields on a movie record.
type MovieStats struct {
	TotalViews            int64
	AvgCompletionRate     float64
	TotalWatchTimeMinutes int64
}

// MovieStatsByID groups sessions by movie identity. Movies absent from
// the result simply had no sessions.
func MovieStatsByID(sessions []models.ViewingSession) map[string]MovieStats {
	type acc struct {
		views      int64
		completion float64
		watch      int64
	}
	groups := make(map[string]*acc)
	for _, s := range sessions {
		a := groups[s.MovieID]
		if a == nil {
			a = &acc{}
			groups[s.MovieID] = a
		}
		a.views++
		a.completion += s.CompletionRate
		a.watch += int64(s.WatchDurationMinutes)
	}

	stats := make(map[string]MovieStats, len(groups))
	for id, a := range groups {
		stats[id] = MovieStats{
			TotalViews:            a.views,
			AvgCompletionRate:     aggregate.Round2(a.completion / float64(a.views)),
			TotalWatchTimeMinutes: a.watch,
		}
	}
	return stats
}

func sessionDate(s models.ViewingSession) (string, error) {
	t, err := time.Parse(time.RFC3339, s.StartTime)
	if err != nil {
		// Tolerate timestamps without an offset.
		t, err = time.Parse("2006-01-02T15:04:05", s.StartTime)
		if err != nil {
			return "", fmt.Errorf("batch: parse start_time %q: %w", s.StartTime, err)
		}
	}
	return t.Format("2006-01-02"), nil
}

// DailyRollups groups sessions by the calendar date of their parsed
// start time and returns rows sorted ascending by date. Zero sessions
// yield an empty slice.
func DailyRollups(sessions []models.ViewingSession) ([]models.DailyRollup, error) {
	type acc struct {
		views      int64
		users      map[string]struct{}
		watch      int64
		completion float64
		devices    []string
	}
	groups := make(map[string]*acc)
	for _, s := range sessions {
		date, err := sessionDate(s)
		if err != nil {
			return nil, err
		}
		a := groups[date]
		if a == nil {
			a = &acc{users: make(map[string]struct{})}
			groups[date] = a
		}
		a.views++
		a.users[s.UserID] = struct{}{}
		a.watch += int64(s.WatchDurationMinutes)
		a.completion += s.CompletionRate
		a.devices = append(a.devices, s.DeviceType)
	}

	rollups := make([]models.DailyRollup, 0, len(groups))
	for date, a := range groups {
		rollups = append(rollups, models.DailyRollup{
			ID:                date,
			Date:              date,
			TotalViews:        a.views,
			UniqueUsers:       int64(len(a.users)),
			TotalWatchTime:    a.watch,
			AvgCompletionRate: aggregate.Round2(a.completion / float64(a.views)),
			DeviceBreakdown:   a.devices,
		})
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Date < rollups[j].Date })
	return rollups, nil
}

// GenreRollups inner-joins sessions to movies on movie identity and
// groups by the movie's primary genre, sorted by view count descending.
// The second return value counts orphan sessions dropped by the join.
func GenreRollups(sessions []models.ViewingSession, movies []models.Movie) ([]models.GenreRollup, int64) {
	genreByMovie := make(map[string]string, len(movies))
	for _, m := range movies {
		genreByMovie[m.ID] = m.Genre
	}

	type acc struct {
		views      int64
		watch      float64
		completion float64
		users      map[string]struct{}
	}
	groups := make(map[string]*acc)
	var orphans int64
	for _, s := range sessions {
		genre, ok := genreByMovie[s.MovieID]
		if !ok {
			orphans++
			continue
		}
		a := groups[genre]
		if a == nil {
			a = &acc{users: make(map[string]struct{})}
			groups[genre] = a
		}
		a.views++
		a.watch += float64(s.WatchDurationMinutes)
		a.completion += s.CompletionRate
		a.users[s.UserID] = struct{}{}
	}

	rollups := make([]models.GenreRollup, 0, len(groups))
	for genre, a := range groups {
		rollups = append(rollups, models.GenreRollup{
			ID:                genre,
			Genre:             genre,
			TotalViews:        a.views,
			AvgWatchTime:      aggregate.Round2(a.watch / float64(a.views)),
			AvgCompletionRate: aggregate.Round2(a.completion / float64(a.views)),
			UniqueUsers:       int64(len(a.users)),
		})
	}
	sort.SliceStable(rollups, func(i, j int) bool { return rollups[i].TotalViews > rollups[j].TotalViews })
	return rollups, orphans
}
