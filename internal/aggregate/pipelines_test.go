package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func stageKey(t *testing.T, stage bson.D) string {
	t.Helper()
	require.Len(t, stage, 1)
	return stage[0].Key
}

func TestMovieStatsPipelineShape(t *testing.T) {
	p := MovieStatsPipeline()
	require.Len(t, p, 1)
	assert.Equal(t, "$group", stageKey(t, p[0]))

	group := p[0][0].Value.(bson.D)
	assert.Equal(t, "_id", group[0].Key)
	assert.Equal(t, "$movie_id", group[0].Value)

	keys := make([]string, 0, len(group))
	for _, e := range group {
		keys = append(keys, e.Key)
	}
	assert.Contains(t, keys, "total_views")
	assert.Contains(t, keys, "avg_completion_rate")
	assert.Contains(t, keys, "total_watch_time")
}

func TestDailyRollupPipelineShape(t *testing.T) {
	p := DailyRollupPipeline()
	require.Len(t, p, 4)

	// The grouping key is computed from a parsed timestamp, never a
	// string prefix.
	assert.Equal(t, "$addFields", stageKey(t, p[0]))
	addFields := p[0][0].Value.(bson.D)
	parsed := addFields[0].Value.(bson.D)
	assert.Equal(t, "$dateFromString", parsed[0].Key)

	assert.Equal(t, "$group", stageKey(t, p[1]))
	assert.Equal(t, "$project", stageKey(t, p[2]))

	assert.Equal(t, "$sort", stageKey(t, p[3]))
	sort := p[3][0].Value.(bson.D)
	assert.Equal(t, "_id", sort[0].Key)
	assert.Equal(t, 1, sort[0].Value, "daily rollup sorts ascending by date")
}

func TestGenreRollupPipelineShape(t *testing.T) {
	p := GenreRollupPipeline()
	require.Len(t, p, 5)

	assert.Equal(t, "$lookup", stageKey(t, p[0]))
	lookup := p[0][0].Value.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "from", Value: "movies"},
		{Key: "localField", Value: "movie_id"},
		{Key: "foreignField", Value: "id"},
		{Key: "as", Value: "movie_info"},
	}, lookup)

	// $unwind makes the join inner: orphan sessions are dropped.
	assert.Equal(t, "$unwind", stageKey(t, p[1]))
	assert.Equal(t, "$group", stageKey(t, p[2]))
	group := p[2][0].Value.(bson.D)
	assert.Equal(t, "$movie_info.genre", group[0].Value)

	assert.Equal(t, "$sort", stageKey(t, p[4]))
	sort := p[4][0].Value.(bson.D)
	assert.Equal(t, "total_views", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value, "genre rollup sorts descending by views")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.67, Round2(0.666666))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 2.0, Round2(2.0))
	assert.Equal(t, 0.7, Round2(0.7000000000000001))
}
