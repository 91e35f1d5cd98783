package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streaming-analytics/internal/models"
)

func TestDeviceAnalytics(t *testing.T) {
	sessions := []models.ViewingSession{
		{ID: "s1", DeviceType: "Mobile", WatchDurationMinutes: 30, CompletionRate: 0.5, BufferingCount: 2},
		{ID: "s2", DeviceType: "Mobile", WatchDurationMinutes: 50, CompletionRate: 0.7, BufferingCount: 0},
		{ID: "s3", DeviceType: "Desktop", WatchDurationMinutes: 90, CompletionRate: 0.9, BufferingCount: 1},
	}

	usage := DeviceAnalytics(sessions)
	require.Len(t, usage, 2)

	assert.Equal(t, "Mobile", usage[0].DeviceType)
	assert.Equal(t, int64(2), usage[0].TotalSessions)
	assert.Equal(t, 40.0, usage[0].AvgWatchDuration)
	assert.Equal(t, 0.60, usage[0].AvgCompletionRate)
	assert.Equal(t, int64(2), usage[0].TotalBuffering)

	assert.Equal(t, "Desktop", usage[1].DeviceType)
}

func TestHourlyPeaks(t *testing.T) {
	sessions := []models.ViewingSession{
		{ID: "s1", StartTime: "2024-01-01T20:10:00Z", CompletionRate: 0.5},
		{ID: "s2", StartTime: "2024-01-02T20:45:00Z", CompletionRate: 0.7},
		{ID: "s3", StartTime: "2024-01-01T09:00:00Z", CompletionRate: 0.9},
	}

	peaks := HourlyPeaks(sessions)
	require.Len(t, peaks, 2)
	assert.Equal(t, 20, peaks[0].Hour)
	assert.Equal(t, int64(2), peaks[0].SessionCount)
	assert.Equal(t, 1, peaks[0].Rank)
	assert.Equal(t, 2, peaks[1].Rank)
}

func TestQualityMonitoring(t *testing.T) {
	sessions := []models.ViewingSession{
		{ID: "s1", Quality: "HD", DeviceType: "Mobile", BufferingCount: 2, CompletionRate: 0.5},
		{ID: "s2", Quality: "HD", DeviceType: "Mobile", BufferingCount: 0, CompletionRate: 0.7},
		{ID: "s3", Quality: "HD", DeviceType: "Desktop", BufferingCount: 4, CompletionRate: 0.9},
		{ID: "s4", Quality: "4K", DeviceType: "Mobile", BufferingCount: 1, CompletionRate: 0.8},
	}

	monitoring := QualityMonitoring(sessions)
	require.Len(t, monitoring, 3)

	// Quality and device form the group key, busiest pair first.
	assert.Equal(t, "HD", monitoring[0].Quality)
	assert.Equal(t, "Mobile", monitoring[0].DeviceType)
	assert.Equal(t, int64(2), monitoring[0].SessionCount)
	assert.Equal(t, 1.0, monitoring[0].AvgBuffering)
	assert.Equal(t, 0.60, monitoring[0].AvgCompletionRate)
}

func TestGeographicDistribution(t *testing.T) {
	sessions := []models.ViewingSession{
		{ID: "s1", UserCountry: "USA", CompletionRate: 0.5},
		{ID: "s2", UserCountry: "USA", CompletionRate: 0.7},
		{ID: "s3", UserCountry: "Brazil", CompletionRate: 0.9},
	}

	geo := GeographicDistribution(sessions)
	require.Len(t, geo, 2)

	assert.Equal(t, "USA", geo[0].Country)
	assert.Equal(t, int64(2), geo[0].TotalViews)
	assert.Equal(t, 0.60, geo[0].AvgEngagement)
	assert.Equal(t, "Brazil", geo[1].Country)
}

func TestTopContent(t *testing.T) {
	movies := []models.Movie{
		{ID: "m1", Title: "First", Genre: "Drama"},
		{ID: "m2", Title: "Second", Genre: "Action"},
	}
	sessions := []models.ViewingSession{
		{ID: "s1", MovieID: "m1", UserID: "u1", WatchDurationMinutes: 30, CompletionRate: 0.5},
		{ID: "s2", MovieID: "m1", UserID: "u2", WatchDurationMinutes: 40, CompletionRate: 0.6},
		{ID: "s3", MovieID: "m2", UserID: "u1", WatchDurationMinutes: 90, CompletionRate: 0.9},
		{ID: "s4", MovieID: "gone", UserID: "u1", WatchDurationMinutes: 10, CompletionRate: 0.1},
	}

	top := TopContent(sessions, movies, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "First", top[0].Title)
	assert.Equal(t, int64(2), top[0].ViewCount)
	assert.Equal(t, int64(70), top[0].TotalWatchTime)
}
