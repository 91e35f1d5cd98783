// Package models defines the entity and fact records stored in MongoDB
// and the derived rollup shapes read by the dashboard.
//
// Movies and users are entities: created once, mutable only in the
// derived statistics fields on Movie. Viewing sessions and ratings are
// facts: append-only, never mutated after creation.
package models

import "time"

// Collection names used across the fact store and view store.
const (
	CollMovies   = "movies"
	CollUsers    = "users"
	CollSessions = "viewing_sessions"
	CollRatings  = "ratings"
	CollDaily    = "daily_analytics"
	CollGenre    = "genre_analytics"
)

// Movie is a catalog entity. TotalViews, AvgCompletionRate and
// TotalWatchTimeMinutes are cache columns owned by the aggregation
// engine; StatsComputedAt records when they were last recomputed.
type Movie struct {
	ID               string   `bson:"id" json:"id"`
	Title            string   `bson:"title" json:"title"`
	Genre            string   `bson:"genre" json:"genre"`
	SubGenres        []string `bson:"sub_genres" json:"sub_genres"`
	DurationMinutes  int      `bson:"duration_minutes" json:"duration_minutes"`
	ReleaseDate      string   `bson:"release_date" json:"release_date"`
	Rating           string   `bson:"rating" json:"rating"`
	Director         string   `bson:"director" json:"director"`
	Cast             []string `bson:"cast" json:"cast"`
	ProductionBudget int64    `bson:"production_budget" json:"production_budget"`
	Description      string   `bson:"description" json:"description"`
	Language         string   `bson:"language" json:"language"`
	Country          string   `bson:"country" json:"country"`
	AvgRating        float64  `bson:"avg_rating" json:"avg_rating"`

	TotalViews            int64      `bson:"total_views" json:"total_views"`
	AvgCompletionRate     float64    `bson:"avg_completion_rate,omitempty" json:"avg_completion_rate,omitempty"`
	TotalWatchTimeMinutes int64      `bson:"total_watch_time_minutes,omitempty" json:"total_watch_time_minutes,omitempty"`
	StatsComputedAt       *time.Time `bson:"stats_computed_at,omitempty" json:"stats_computed_at,omitempty"`

	CreatedAt string `bson:"created_at" json:"created_at"`
}

// User is immutable once created.
type User struct {
	ID               string   `bson:"id" json:"id"`
	Username         string   `bson:"username" json:"username"`
	Email            string   `bson:"email" json:"email"`
	Age              int      `bson:"age" json:"age"`
	Gender           string   `bson:"gender" json:"gender"`
	Country          string   `bson:"country" json:"country"`
	SubscriptionType string   `bson:"subscription_type" json:"subscription_type"`
	SignupDate       string   `bson:"signup_date" json:"signup_date"`
	IsActive         bool     `bson:"is_active" json:"is_active"`
	PreferredGenres  []string `bson:"preferred_genres" json:"preferred_genres"`
	CreatedAt        string   `bson:"created_at" json:"created_at"`
}

// ViewingSession is a fact record. UserCountry and SubscriptionType are
// denormalized copies of the user's values at session time. StartTime and
// EndTime are stored as ISO-8601 strings, matching the read API.
type ViewingSession struct {
	ID                   string  `bson:"id" json:"id"`
	UserID               string  `bson:"user_id" json:"user_id"`
	MovieID              string  `bson:"movie_id" json:"movie_id"`
	StartTime            string  `bson:"start_time" json:"start_time"`
	EndTime              string  `bson:"end_time" json:"end_time"`
	WatchDurationMinutes int     `bson:"watch_duration_minutes" json:"watch_duration_minutes"`
	CompletionRate       float64 `bson:"completion_rate" json:"completion_rate"`
	DeviceType           string  `bson:"device_type" json:"device_type"`
	Quality              string  `bson:"quality" json:"quality"`
	BufferingCount       int     `bson:"buffering_count" json:"buffering_count"`
	UserCountry          string  `bson:"user_country" json:"user_country"`
	SubscriptionType     string  `bson:"subscription_type" json:"subscription_type"`
	CreatedAt            string  `bson:"created_at" json:"created_at"`
}

// Rating is a fact record; at most one per (user, movie) pair.
type Rating struct {
	ID           string  `bson:"id" json:"id"`
	UserID       string  `bson:"user_id" json:"user_id"`
	MovieID      string  `bson:"movie_id" json:"movie_id"`
	Rating       int     `bson:"rating" json:"rating"`
	ReviewText   *string `bson:"review_text" json:"review_text"`
	HelpfulCount int     `bson:"helpful_count" json:"helpful_count"`
	RatingDate   string  `bson:"rating_date" json:"rating_date"`
	CreatedAt    string  `bson:"created_at" json:"created_at"`
}

// DailyRollup is one row per calendar date, derived from session start
// times. DeviceBreakdown is the raw list of device types seen that day;
// consumers recompute a per-device breakdown from it.
type DailyRollup struct {
	ID                string   `bson:"id" json:"id"`
	Date              string   `bson:"date" json:"date"`
	TotalViews        int64    `bson:"total_views" json:"total_views"`
	UniqueUsers       int64    `bson:"unique_users" json:"unique_users"`
	TotalWatchTime    int64    `bson:"total_watch_time" json:"total_watch_time"`
	AvgCompletionRate float64  `bson:"avg_completion_rate" json:"avg_completion_rate"`
	DeviceBreakdown   []string `bson:"device_breakdown" json:"device_breakdown"`
	CreatedAt         string   `bson:"created_at" json:"created_at"`
}

// GenreRollup is one row per primary genre, joined through sessions.
type GenreRollup struct {
	ID                string  `bson:"id" json:"id"`
	Genre             string  `bson:"genre" json:"genre"`
	TotalViews        int64   `bson:"total_views" json:"total_views"`
	AvgWatchTime      float64 `bson:"avg_watch_time" json:"avg_watch_time"`
	AvgCompletionRate float64 `bson:"avg_completion_rate" json:"avg_completion_rate"`
	UniqueUsers       int64   `bson:"unique_users" json:"unique_users"`
	CreatedAt         string  `bson:"created_at" json:"created_at"`
}
