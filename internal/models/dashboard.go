package models

// Read-side response shapes served by the analytics API. These are
// computed from the materialized views (or the enumerated fallback
// aggregations) and never stored.

type DashboardMetrics struct {
	TotalUsers          int64   `json:"total_users"`
	ActiveUsers         int64   `json:"active_users"`
	TotalMovies         int64   `json:"total_movies"`
	TotalViews          int64   `json:"total_views"`
	TotalWatchTimeHours float64 `json:"total_watch_time_hours"`
	AvgCompletionRate   float64 `json:"avg_completion_rate"`
	PremiumSubscribers  int64   `json:"premium_subscribers"`
}

type TopMovie struct {
	Title             string  `bson:"title" json:"title"`
	Genre             string  `bson:"genre" json:"genre"`
	TotalViews        int64   `bson:"total_views" json:"total_views"`
	AvgCompletionRate float64 `bson:"avg_completion_rate" json:"avg_completion_rate"`
	AvgRating         float64 `bson:"avg_rating" json:"avg_rating"`
}

type DeviceAnalytics struct {
	DeviceType        string  `bson:"device_type" json:"device_type"`
	SessionCount      int64   `bson:"session_count" json:"session_count"`
	AvgCompletionRate float64 `bson:"avg_completion_rate" json:"avg_completion_rate"`
}

type GeographicData struct {
	Country           string  `bson:"country" json:"country"`
	TotalViews        int64   `bson:"total_views" json:"total_views"`
	UniqueUsers       int64   `bson:"unique_users" json:"unique_users"`
	AvgCompletionRate float64 `bson:"avg_completion_rate" json:"avg_completion_rate"`
}

type HourlyTrend struct {
	Hour              int     `bson:"hour" json:"hour"`
	ViewCount         int64   `bson:"view_count" json:"view_count"`
	AvgCompletionRate float64 `bson:"avg_completion_rate" json:"avg_completion_rate"`
}

type SubscriptionBreakdown struct {
	SubscriptionType string `bson:"subscription_type" json:"subscription_type"`
	UserCount        int64  `bson:"user_count" json:"user_count"`
	ActiveCount      int64  `bson:"active_count" json:"active_count"`
}
