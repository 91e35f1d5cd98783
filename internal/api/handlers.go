package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streaming-analytics/internal/aggregate"
	"streaming-analytics/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, name string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Movie Streaming Platform Analytics API",
		"version": "1.0.0",
		"status":  "operational",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database connection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}

func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := s.store.Count(ctx, models.CollUsers, nil)
	if err != nil {
		s.serverError(w, err)
		return
	}
	activeUsers, err := s.store.Count(ctx, models.CollUsers, bson.M{"is_active": true})
	if err != nil {
		s.serverError(w, err)
		return
	}
	totalMovies, err := s.store.Count(ctx, models.CollMovies, nil)
	if err != nil {
		s.serverError(w, err)
		return
	}
	totalViews, err := s.store.Count(ctx, models.CollSessions, nil)
	if err != nil {
		s.serverError(w, err)
		return
	}
	premium, err := s.store.Count(ctx, models.CollUsers, bson.M{"subscription_type": "Premium"})
	if err != nil {
		s.serverError(w, err)
		return
	}

	var watch []struct {
		TotalWatchTime int64   `bson:"total_watch_time"`
		AvgCompletion  float64 `bson:"avg_completion"`
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_watch_time", Value: bson.D{{Key: "$sum", Value: "$watch_duration_minutes"}}},
			{Key: "avg_completion", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
		}}},
	}
	if err := s.store.Aggregate(ctx, models.CollSessions, pipeline, &watch); err != nil {
		s.serverError(w, err)
		return
	}

	metrics := models.DashboardMetrics{
		TotalUsers:         totalUsers,
		ActiveUsers:        activeUsers,
		TotalMovies:        totalMovies,
		TotalViews:         totalViews,
		PremiumSubscribers: premium,
	}
	if len(watch) > 0 {
		metrics.TotalWatchTimeHours = aggregate.Round2(float64(watch[0].TotalWatchTime) / 60)
		metrics.AvgCompletionRate = aggregate.Round2(watch[0].AvgCompletion)
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleTopMovies(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10, 50)

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: models.CollMovies},
			{Key: "localField", Value: "movie_id"},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: "movie_info"},
		}}},
		{{Key: "$unwind", Value: "$movie_info"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$movie_id"},
			{Key: "title", Value: bson.D{{Key: "$first", Value: "$movie_info.title"}}},
			{Key: "genre", Value: bson.D{{Key: "$first", Value: "$movie_info.genre"}}},
			{Key: "avg_rating", Value: bson.D{{Key: "$first", Value: "$movie_info.avg_rating"}}},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_views", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	var results []models.TopMovie
	if err := s.store.Aggregate(r.Context(), models.CollSessions, pipeline, &results); err != nil {
		s.serverError(w, err)
		return
	}
	for i := range results {
		results[i].AvgCompletionRate = aggregate.Round2(results[i].AvgCompletionRate)
	}
	writeJSON(w, http.StatusOK, results)
}

// handleGenres reads the materialized genre view; an empty view falls
// back to one real-time aggregation over the facts.
func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rollups []models.GenreRollup
	if err := s.store.Find(ctx, models.CollGenre, nil, options.Find().SetSort(bson.D{{Key: "total_views", Value: -1}}), &rollups); err != nil {
		s.serverError(w, err)
		return
	}
	if len(rollups) > 0 {
		writeJSON(w, http.StatusOK, rollups)
		return
	}

	var rows []struct {
		Genre             string  `bson:"_id"`
		TotalViews        int64   `bson:"total_views"`
		AvgWatchTime      float64 `bson:"avg_watch_time"`
		AvgCompletionRate float64 `bson:"avg_completion_rate"`
		UniqueUsers       int64   `bson:"unique_users"`
	}
	if err := s.store.Aggregate(ctx, models.CollSessions, aggregate.GenreRollupPipeline(), &rows); err != nil {
		s.serverError(w, err)
		return
	}
	rollups = make([]models.GenreRollup, 0, len(rows))
	for _, row := range rows {
		rollups = append(rollups, models.GenreRollup{
			ID:                row.Genre,
			Genre:             row.Genre,
			TotalViews:        row.TotalViews,
			AvgWatchTime:      aggregate.Round2(row.AvgWatchTime),
			AvgCompletionRate: aggregate.Round2(row.AvgCompletionRate),
			UniqueUsers:       row.UniqueUsers,
		})
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleDailyTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30, 90)

	var rollups []models.DailyRollup
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(days))
	if err := s.store.Find(r.Context(), models.CollDaily, nil, opts, &rollups); err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$device_type"},
			{Key: "session_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "session_count", Value: -1}}}},
	}

	var rows []struct {
		DeviceType        string  `bson:"_id"`
		SessionCount      int64   `bson:"session_count"`
		AvgCompletionRate float64 `bson:"avg_completion_rate"`
	}
	if err := s.store.Aggregate(r.Context(), models.CollSessions, pipeline, &rows); err != nil {
		s.serverError(w, err)
		return
	}
	results := make([]models.DeviceAnalytics, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.DeviceAnalytics{
			DeviceType:        row.DeviceType,
			SessionCount:      row.SessionCount,
			AvgCompletionRate: aggregate.Round2(row.AvgCompletionRate),
		})
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGeographic(w http.ResponseWriter, r *http.Request) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_country"},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "unique_users", Value: bson.D{{Key: "$addToSet", Value: "$user_id"}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "total_views", Value: 1},
			{Key: "unique_users", Value: bson.D{{Key: "$size", Value: "$unique_users"}}},
			{Key: "avg_completion_rate", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_views", Value: -1}}}},
		{{Key: "$limit", Value: 20}},
	}

	var rows []struct {
		Country           string  `bson:"_id"`
		TotalViews        int64   `bson:"total_views"`
		UniqueUsers       int64   `bson:"unique_users"`
		AvgCompletionRate float64 `bson:"avg_completion_rate"`
	}
	if err := s.store.Aggregate(r.Context(), models.CollSessions, pipeline, &rows); err != nil {
		s.serverError(w, err)
		return
	}
	results := make([]models.GeographicData, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.GeographicData{
			Country:           row.Country,
			TotalViews:        row.TotalViews,
			UniqueUsers:       row.UniqueUsers,
			AvgCompletionRate: aggregate.Round2(row.AvgCompletionRate),
		})
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHourlyTrends(w http.ResponseWriter, r *http.Request) {
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{
			{Key: "start_datetime", Value: bson.D{{Key: "$dateFromString", Value: bson.D{
				{Key: "dateString", Value: "$start_time"},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$hour", Value: "$start_datetime"}}},
			{Key: "view_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	var rows []struct {
		Hour              int     `bson:"_id"`
		ViewCount         int64   `bson:"view_count"`
		AvgCompletionRate float64 `bson:"avg_completion_rate"`
	}
	if err := s.store.Aggregate(r.Context(), models.CollSessions, pipeline, &rows); err != nil {
		s.serverError(w, err)
		return
	}
	results := make([]models.HourlyTrend, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.HourlyTrend{
			Hour:              row.Hour,
			ViewCount:         row.ViewCount,
			AvgCompletionRate: aggregate.Round2(row.AvgCompletionRate),
		})
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleUserAnalytics(w http.ResponseWriter, r *http.Request) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$subscription_type"},
			{Key: "user_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "active_count", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$is_active", true}}}, 1, 0,
				}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "user_count", Value: -1}}}},
	}

	var rows []struct {
		SubscriptionType string `bson:"_id"`
		UserCount        int64  `bson:"user_count"`
		ActiveCount      int64  `bson:"active_count"`
	}
	if err := s.store.Aggregate(r.Context(), models.CollUsers, pipeline, &rows); err != nil {
		s.serverError(w, err)
		return
	}
	results := make([]models.SubscriptionBreakdown, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.SubscriptionBreakdown{
			SubscriptionType: row.SubscriptionType,
			UserCount:        row.UserCount,
			ActiveCount:      row.ActiveCount,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRunETL(w http.ResponseWriter, r *http.Request) {
	if s.runETL == nil {
		writeError(w, http.StatusNotImplemented, "pipeline trigger not configured")
		return
	}
	if err := s.runETL(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("pipeline trigger failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "ETL pipeline completed"})
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
