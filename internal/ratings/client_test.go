package ratings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

func ratingsServer(t *testing.T, hits *int64, updatedAt time.Time) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)

		team := r.URL.Query().Get("team")
		if team == "Unknown FC" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(models.TeamRating{
			TeamID:        team,
			Attack:        1.2,
			Defense:       0.9,
			HomeAdvantage: 1.1,
			RecentForm:    0.7,
			HeadToHead:    0.6,
			UpdatedAt:     updatedAt,
		})
	}))
}

func newProvider(t *testing.T, url string) *HTTPProvider {
	t.Helper()
	return NewHTTPProvider(config.RatingsConfig{
		URL:                  url,
		CacheTTLSeconds:      60,
		StalenessWindowHours: 24,
		TimeoutSeconds:       2,
	}, nil)
}

func TestMatchRatings_FetchesBothTeams(t *testing.T) {
	var hits int64
	srv := ratingsServer(t, &hits, time.Now())
	defer srv.Close()

	p := newProvider(t, srv.URL)
	defer p.Close()

	got := p.MatchRatings(context.Background(), "Arsenal", "Chelsea")
	assert.False(t, got.Fallback)
	assert.Equal(t, "Arsenal", got.Home.TeamID)
	assert.Equal(t, "Chelsea", got.Away.TeamID)
	assert.InDelta(t, 1.2, got.Home.Attack, 1e-12)
}

func TestMatchRatings_CachesPerTeam(t *testing.T) {
	var hits int64
	srv := ratingsServer(t, &hits, time.Now())
	defer srv.Close()

	p := newProvider(t, srv.URL)
	defer p.Close()

	p.MatchRatings(context.Background(), "Arsenal", "Chelsea")
	p.MatchRatings(context.Background(), "Arsenal", "Chelsea")

	assert.Equal(t, int64(2), atomic.LoadInt64(&hits), "second call must be served from cache")
}

func TestMatchRatings_UnknownTeamFallsBack(t *testing.T) {
	var hits int64
	srv := ratingsServer(t, &hits, time.Now())
	defer srv.Close()

	p := newProvider(t, srv.URL)
	defer p.Close()

	got := p.MatchRatings(context.Background(), "Unknown FC", "Chelsea")
	assert.True(t, got.Fallback)
	assert.Equal(t, 1.0, got.Home.Attack)
	assert.Equal(t, 0.5, got.Home.RecentForm)
	// The healthy side still gets its real rating
	assert.InDelta(t, 1.2, got.Away.Attack, 1e-12)
}

func TestMatchRatings_StaleRatingFallsBack(t *testing.T) {
	var hits int64
	srv := ratingsServer(t, &hits, time.Now().Add(-48*time.Hour))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	defer p.Close()

	got := p.MatchRatings(context.Background(), "Arsenal", "Chelsea")
	assert.True(t, got.Fallback)
	assert.Equal(t, 1.0, got.Home.Attack)
}

func TestMatchRatings_ProviderDownFallsBack(t *testing.T) {
	p := newProvider(t, "http://127.0.0.1:1")
	defer p.Close()

	got := p.MatchRatings(context.Background(), "Arsenal", "Chelsea")
	assert.True(t, got.Fallback)
	assert.Equal(t, 1.0, got.Home.Attack)
	assert.Equal(t, 1.0, got.Away.Defense)
}
