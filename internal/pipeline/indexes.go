package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"streaming-analytics/internal/models"
)

// readIndexes enumerates the access patterns of the dashboard queries.
func readIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		models.CollMovies: {
			{Keys: bson.D{{Key: "genre", Value: 1}}},
			{Keys: bson.D{{Key: "release_date", Value: 1}}},
			{Keys: bson.D{{Key: "avg_rating", Value: -1}}},
			{Keys: bson.D{{Key: "country", Value: 1}}},
		},
		models.CollUsers: {
			{Keys: bson.D{{Key: "country", Value: 1}}},
			{Keys: bson.D{{Key: "subscription_type", Value: 1}}},
			{Keys: bson.D{{Key: "signup_date", Value: 1}}},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
		models.CollSessions: {
			{Keys: bson.D{{Key: "start_time", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "movie_id", Value: 1}}},
			{Keys: bson.D{{Key: "device_type", Value: 1}}},
			{Keys: bson.D{{Key: "user_country", Value: 1}}},
			{Keys: bson.D{{Key: "movie_id", Value: 1}, {Key: "start_time", Value: -1}}},
		},
		models.CollRatings: {
			{Keys: bson.D{{Key: "movie_id", Value: 1}, {Key: "rating", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "rating_date", Value: -1}}},
		},
	}
}
