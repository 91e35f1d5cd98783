package aggregate

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pipeline builders for the three derived views. Grouping, joining and
// sorting run inside the store's aggregation primitive; rounding of
// average fields happens after decode (see Round2).

// MovieStatsPipeline groups sessions by movie identity: session count,
// mean completion rate, summed watch minutes.
func MovieStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$movie_id"},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
			{Key: "total_watch_time", Value: bson.D{{Key: "$sum", Value: "$watch_duration_minutes"}}},
		}}},
	}
}

// DailyRollupPipeline groups sessions by the calendar date of their start
// time. The timestamp is parsed with $dateFromString rather than sliced
// as a string prefix, so formatting variance in stored timestamps cannot
// skew the grouping key. Output is sorted ascending by date; the
// lexicographic sort on YYYY-MM-DD is date-correct.
func DailyRollupPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{
			{Key: "date", Value: bson.D{{Key: "$dateFromString", Value: bson.D{
				{Key: "dateString", Value: "$start_time"},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$date"},
			}}}},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "unique_users", Value: bson.D{{Key: "$addToSet", Value: "$user_id"}}},
			{Key: "total_watch_time", Value: bson.D{{Key: "$sum", Value: "$watch_duration_minutes"}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
			{Key: "device_breakdown", Value: bson.D{{Key: "$push", Value: "$device_type"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "total_views", Value: 1},
			{Key: "unique_users", Value: bson.D{{Key: "$size", Value: "$unique_users"}}},
			{Key: "total_watch_time", Value: 1},
			{Key: "avg_completion_rate", Value: 1},
			{Key: "device_breakdown", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// GenreRollupPipeline inner-joins sessions to movies and groups by the
// movie's primary genre. $unwind drops sessions whose movie is missing
// (orphans); the engine counts and logs them. Output is sorted by view
// count descending; ties keep the store's grouping order.
func GenreRollupPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "movies"},
			{Key: "localField", Value: "movie_id"},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: "movie_info"},
		}}},
		{{Key: "$unwind", Value: "$movie_info"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$movie_info.genre"},
			{Key: "total_views", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_watch_time", Value: bson.D{{Key: "$avg", Value: "$watch_duration_minutes"}}},
			{Key: "avg_completion_rate", Value: bson.D{{Key: "$avg", Value: "$completion_rate"}}},
			{Key: "unique_users", Value: bson.D{{Key: "$addToSet", Value: "$user_id"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "total_views", Value: 1},
			{Key: "avg_watch_time", Value: 1},
			{Key: "avg_completion_rate", Value: 1},
			{Key: "unique_users", Value: bson.D{{Key: "$size", Value: "$unique_users"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_views", Value: -1}}}},
	}
}
