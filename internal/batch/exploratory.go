package batch

import (
	"sort"
	"time"

	"streaming-analytics/internal/aggregate"
	"streaming-analytics/internal/models"
)

// DeviceUsage summarizes sessions per device type.
type DeviceUsage struct {
	DeviceType        string
	TotalSessions     int64
	AvgWatchDuration  float64
	AvgCompletionRate float64
	TotalBuffering    int64
}

func DeviceAnalytics(sessions []models.ViewingSession) []DeviceUsage {
	type acc struct {
		sessions   int64
		watch      float64
		completion float64
		buffering  int64
	}
	groups := make(map[string]*acc)
	for _, s := range sessions {
		a := groups[s.DeviceType]
		if a == nil {
			a = &acc{}
			groups[s.DeviceType] = a
		}
		a.sessions++
		a.watch += float64(s.WatchDurationMinutes)
		a.completion += s.CompletionRate
		a.buffering += int64(s.BufferingCount)
	}

	out := make([]DeviceUsage, 0, len(groups))
	for device, a := range groups {
		out = append(out, DeviceUsage{
			DeviceType:        device,
			TotalSessions:     a.sessions,
			AvgWatchDuration:  aggregate.Round2(a.watch / float64(a.sessions)),
			AvgCompletionRate: aggregate.Round2(a.completion / float64(a.sessions)),
			TotalBuffering:    a.buffering,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSessions > out[j].TotalSessions })
	return out
}

// HourlyPeak ranks hours of day by session count, rank 1 busiest.
type HourlyPeak struct {
	Hour              int
	SessionCount      int64
	AvgCompletionRate float64
	Rank              int
}

func HourlyPeaks(sessions []models.ViewingSession) []HourlyPeak {
	type acc struct {
		count      int64
		completion float64
	}
	groups := make(map[int]*acc)
	for _, s := range sessions {
		t, err := time.Parse(time.RFC3339, s.StartTime)
		if err != nil {
			continue
		}
		a := groups[t.Hour()]
		if a == nil {
			a = &acc{}
			groups[t.Hour()] = a
		}
		a.count++
		a.completion += s.CompletionRate
	}

	out := make([]HourlyPeak, 0, len(groups))
	for hour, a := range groups {
		out = append(out, HourlyPeak{
			Hour:              hour,
			SessionCount:      a.count,
			AvgCompletionRate: aggregate.Round2(a.completion / float64(a.count)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SessionCount > out[j].SessionCount })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// QualityExperience summarizes playback health per (quality, device)
// pair.
type QualityExperience struct {
	Quality           string
	DeviceType        string
	SessionCount      int64
	AvgBuffering      float64
	AvgCompletionRate float64
}

func QualityMonitoring(sessions []models.ViewingSession) []QualityExperience {
	type key struct {
		quality string
		device  string
	}
	type acc struct {
		sessions   int64
		buffering  float64
		completion float64
	}
	groups := make(map[key]*acc)
	for _, s := range sessions {
		k := key{s.Quality, s.DeviceType}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sessions++
		a.buffering += float64(s.BufferingCount)
		a.completion += s.CompletionRate
	}

	out := make([]QualityExperience, 0, len(groups))
	for k, a := range groups {
		out = append(out, QualityExperience{
			Quality:           k.quality,
			DeviceType:        k.device,
			SessionCount:      a.sessions,
			AvgBuffering:      aggregate.Round2(a.buffering / float64(a.sessions)),
			AvgCompletionRate: aggregate.Round2(a.completion / float64(a.sessions)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SessionCount > out[j].SessionCount })
	return out
}

// CountryUsage summarizes views and engagement per country, using the
// country denormalized onto each session.
type CountryUsage struct {
	Country       string
	TotalViews    int64
	AvgEngagement float64
}

func GeographicDistribution(sessions []models.ViewingSession) []CountryUsage {
	type acc struct {
		views      int64
		completion float64
	}
	groups := make(map[string]*acc)
	for _, s := range sessions {
		a := groups[s.UserCountry]
		if a == nil {
			a = &acc{}
			groups[s.UserCountry] = a
		}
		a.views++
		a.completion += s.CompletionRate
	}

	out := make([]CountryUsage, 0, len(groups))
	for country, a := range groups {
		out = append(out, CountryUsage{
			Country:       country,
			TotalViews:    a.views,
			AvgEngagement: aggregate.Round2(a.completion / float64(a.views)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalViews > out[j].TotalViews })
	return out
}

// ContentPerformance is per-movie statistics joined to the catalog.
type ContentPerformance struct {
	Title          string
	Genre          string
	ViewCount      int64
	AvgCompletion  float64
	TotalWatchTime int64
}

// TopContent returns the top n movies by view count, inner-joined to the
// catalog; sessions for unknown movies are dropped.
func TopContent(sessions []models.ViewingSession, movies []models.Movie, n int) []ContentPerformance {
	byID := make(map[string]models.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	stats := MovieStatsByID(sessions)
	out := make([]ContentPerformance, 0, len(stats))
	for id, st := range stats {
		movie, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, ContentPerformance{
			Title:          movie.Title,
			Genre:          movie.Genre,
			ViewCount:      st.TotalViews,
			AvgCompletion:  st.AvgCompletionRate,
			TotalWatchTime: st.TotalWatchTimeMinutes,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ViewCount > out[j].ViewCount })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
