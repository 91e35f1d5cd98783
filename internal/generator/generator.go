// Package generator produces the synthetic catalog and fact stream
// consumed by the pipeline: movies, users, viewing sessions, ratings.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"streaming-analytics/internal/models"
)

var (
	Genres         = []string{"Action", "Comedy", "Drama", "Horror", "Sci-Fi", "Romance", "Thriller", "Documentary", "Animation", "Fantasy"}
	ContentRatings = []string{"G", "PG", "PG-13", "R", "NC-17"}
	Countries      = []string{"USA", "UK", "India", "Canada", "Australia", "Germany", "France", "Japan", "Brazil", "Mexico"}
	DeviceTypes    = []string{"Mobile", "Desktop", "Tablet", "Smart TV", "Gaming Console"}
	Qualities      = []string{"SD", "HD", "FHD", "4K"}
	Languages      = []string{"English", "Spanish", "French", "Hindi", "Japanese"}
	Subscriptions  = []string{"Free", "Basic", "Premium", "Family"}
)

var titleSuffixes = []string{"Movie", "Story", "Adventure", "Chronicles", "Legacy"}

var titleWords = []string{
	"Midnight", "Crimson", "Silent", "Golden", "Broken", "Hidden", "Electric",
	"Distant", "Burning", "Frozen", "Savage", "Lost", "Final", "Iron", "Neon",
	"Horizon", "Empire", "Shadow", "Tempest", "Reckoning", "Voyage", "Signal",
	"Garden", "Harbor", "Machine", "Summit", "Echo", "Mirage", "Orbit", "Vigil",
}

var firstNames = []string{
	"James", "Maria", "Wei", "Aisha", "Carlos", "Yuki", "Priya", "Lucas",
	"Emma", "Omar", "Sofia", "Daniel", "Ingrid", "Kenji", "Fatima", "Victor",
}

var lastNames = []string{
	"Smith", "Garcia", "Chen", "Khan", "Silva", "Tanaka", "Patel", "Muller",
	"Johnson", "Rossi", "Kim", "Dubois", "Novak", "Okafor", "Larsen", "Ivanov",
}

// ErrNoCatalog is returned when fact generation is requested before
// movies and users exist.
var ErrNoCatalog = errors.New("generator: generate movies and users first")

// Generator is seedable for deterministic output. It keeps the generated
// catalog so that sessions and ratings can reference real identities.
type Generator struct {
	rng    *rand.Rand
	now    time.Time
	movies []models.Movie
	users  []models.User
}

func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

// sample returns k distinct values drawn from vocab.
func (g *Generator) sample(vocab []string, k int) []string {
	perm := g.rng.Perm(len(vocab))
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = vocab[perm[i]]
	}
	return out
}

func (g *Generator) name() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

// pastDate returns an ISO date up to maxDays in the past.
func (g *Generator) pastDate(maxDays int) string {
	d := g.now.AddDate(0, 0, -g.rng.Intn(maxDays))
	return d.Format("2006-01-02")
}

func (g *Generator) pastTimestamp(maxDays int) time.Time {
	offset := time.Duration(g.rng.Int63n(int64(maxDays) * 24 * int64(time.Hour)))
	return g.now.Add(-offset)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (g *Generator) Movies(count int) []models.Movie {
	movies := make([]models.Movie, 0, count)
	for i := 0; i < count; i++ {
		castSize := 3 + g.rng.Intn(6)
		cast := make([]string, castSize)
		for j := range cast {
			cast[j] = g.name()
		}
		movies = append(movies, models.Movie{
			ID:               uuid.New().String(),
			Title:            fmt.Sprintf("%s %s %s", g.pick(titleWords), g.pick(titleWords), g.pick(titleSuffixes)),
			Genre:            g.pick(Genres),
			SubGenres:        g.sample(Genres, 1+g.rng.Intn(3)),
			DurationMinutes:  80 + g.rng.Intn(101),
			ReleaseDate:      g.pastDate(365 * 10),
			Rating:           g.pick(ContentRatings),
			Director:         g.name(),
			Cast:             cast,
			ProductionBudget: 1_000_000 + g.rng.Int63n(199_000_001),
			Description:      fmt.Sprintf("A %s tale of the %s %s.", g.pick(Genres), g.pick(titleWords), g.pick(titleSuffixes)),
			Language:         g.pick(Languages),
			Country:          g.pick(Countries),
			AvgRating:        math.Round((3.0+g.rng.Float64()*6.5)*10) / 10,
			TotalViews:       0,
			CreatedAt:        g.now.Format(time.RFC3339),
		})
	}
	g.movies = movies
	return movies
}

func (g *Generator) Users(count int) []models.User {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, models.User{
			ID:               uuid.New().String(),
			Username:         fmt.Sprintf("user_%06d", g.rng.Intn(1_000_000)),
			Email:            fmt.Sprintf("%s.%d@example.com", firstNames[g.rng.Intn(len(firstNames))], g.rng.Intn(100_000)),
			Age:              18 + g.rng.Intn(48),
			Gender:           g.pick([]string{"Male", "Female", "Other"}),
			Country:          g.pick(Countries),
			SubscriptionType: g.pick(Subscriptions),
			SignupDate:       g.pastDate(365 * 3),
			IsActive:         g.rng.Intn(4) != 0,
			PreferredGenres:  g.sample(Genres, 2+g.rng.Intn(3)),
			CreatedAt:        g.now.Format(time.RFC3339),
		})
	}
	g.users = users
	return users
}

// Sessions generates the viewing-session fact stream. Completion rate is
// uniform in [0.1, 1.0] rounded to 2 decimals; watch duration derives
// from the movie duration; the user's country and subscription tier are
// denormalized onto the session.
func (g *Generator) Sessions(count int) ([]models.ViewingSession, error) {
	if len(g.movies) == 0 || len(g.users) == 0 {
		return nil, ErrNoCatalog
	}
	sessions := make([]models.ViewingSession, 0, count)
	for i := 0; i < count; i++ {
		movie := g.movies[g.rng.Intn(len(g.movies))]
		user := g.users[g.rng.Intn(len(g.users))]
		start := g.pastTimestamp(90)

		completion := round2(0.1 + g.rng.Float64()*0.9)
		watched := int(float64(movie.DurationMinutes) * completion)

		buffering := 0
		if g.rng.Float64() < 0.3 {
			buffering = g.rng.Intn(6)
		}

		sessions = append(sessions, models.ViewingSession{
			ID:                   uuid.New().String(),
			UserID:               user.ID,
			MovieID:              movie.ID,
			StartTime:            start.Format(time.RFC3339),
			EndTime:              start.Add(time.Duration(watched) * time.Minute).Format(time.RFC3339),
			WatchDurationMinutes: watched,
			CompletionRate:       completion,
			DeviceType:           g.pick(DeviceTypes),
			Quality:              g.pick(Qualities),
			BufferingCount:       buffering,
			UserCountry:          user.Country,
			SubscriptionType:     user.SubscriptionType,
			CreatedAt:            g.now.Format(time.RFC3339),
		})
	}
	return sessions, nil
}

// Ratings generates at most one rating per (user, movie) pair, enforced
// by a dedup set over the composite key.
func (g *Generator) Ratings(count int) ([]models.Rating, error) {
	if len(g.movies) == 0 || len(g.users) == 0 {
		return nil, ErrNoCatalog
	}
	ratings := make([]models.Rating, 0, count)
	used := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		var user models.User
		var movie models.Movie
		for {
			user = g.users[g.rng.Intn(len(g.users))]
			movie = g.movies[g.rng.Intn(len(g.movies))]
			key := user.ID + "_" + movie.ID
			if _, ok := used[key]; !ok {
				used[key] = struct{}{}
				break
			}
		}

		var review *string
		if g.rng.Float64() < 0.4 {
			text := fmt.Sprintf("A %s %s with a %s ending.",
				g.pick([]string{"gripping", "forgettable", "stunning", "slow", "heartfelt"}),
				g.pick([]string{"watch", "ride", "drama", "spectacle"}),
				g.pick([]string{"satisfying", "rushed", "haunting", "predictable"}))
			review = &text
		}

		ratings = append(ratings, models.Rating{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			MovieID:      movie.ID,
			Rating:       1 + g.rng.Intn(10),
			ReviewText:   review,
			HelpfulCount: g.rng.Intn(501),
			RatingDate:   g.pastTimestamp(365 * 2).Format(time.RFC3339),
			CreatedAt:    g.now.Format(time.RFC3339),
		})
	}
	return ratings, nil
}
