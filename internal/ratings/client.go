// Package ratings fetches team modeling inputs from the ratings
// collaborator, with a TTL cache and a league-average fallback.
package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/feed"
	"github.com/yourusername/betmaster/internal/models"
)

// Provider supplies ratings for both sides of a match. Implementations
// must degrade to fallback ratings rather than fail the pipeline.
type Provider interface {
	MatchRatings(ctx context.Context, homeTeam, awayTeam string) models.MatchRatings
}

// HTTPProvider fetches ratings over HTTP and caches them per team
type HTTPProvider struct {
	baseURL   string
	apiKey    string
	staleness time.Duration
	client    *feed.RateLimitedHTTPClient
	cache     *gocache.Cache
	logger    *logrus.Logger
	now       func() time.Time
}

// NewHTTPProvider creates a ratings client from configuration
func NewHTTPProvider(cfg config.RatingsConfig, logger *logrus.Logger) *HTTPProvider {
	clientCfg := feed.DefaultHTTPClientConfig()
	clientCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second

	return &HTTPProvider{
		baseURL:   cfg.URL,
		apiKey:    cfg.APIKey,
		staleness: time.Duration(cfg.StalenessWindowHours) * time.Hour,
		client:    feed.NewRateLimitedHTTPClient(clientCfg, logger),
		cache:     gocache.New(ttl, 2*ttl),
		logger:    logger,
		now:       time.Now,
	}
}

// MatchRatings returns ratings for both teams. Any team whose rating is
// missing, unreachable or older than the staleness window gets the
// neutral league-average substitute and the result is flagged fallback.
func (p *HTTPProvider) MatchRatings(ctx context.Context, homeTeam, awayTeam string) models.MatchRatings {
	home, homeOK := p.teamRating(ctx, homeTeam)
	away, awayOK := p.teamRating(ctx, awayTeam)

	result := models.MatchRatings{
		Home:     home,
		Away:     away,
		Fallback: !homeOK || !awayOK,
	}

	if result.Fallback && p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"home_team": homeTeam,
			"away_team": awayTeam,
			"home_ok":   homeOK,
			"away_ok":   awayOK,
		}).Warn("Using fallback ratings")
	}

	return result
}

// teamRating returns a usable rating for one team, or the neutral
// substitute with ok=false
func (p *HTTPProvider) teamRating(ctx context.Context, team string) (models.TeamRating, bool) {
	if cached, found := p.cache.Get(team); found {
		rating := cached.(models.TeamRating)
		if !rating.IsStale(p.now(), p.staleness) {
			return rating, true
		}
		p.cache.Delete(team)
	}

	rating, err := p.fetch(ctx, team)
	if err != nil {
		return models.NeutralRating(team), false
	}
	if rating.IsStale(p.now(), p.staleness) {
		if p.logger != nil {
			p.logger.WithField("team", team).Warn("Rating older than staleness window")
		}
		return models.NeutralRating(team), false
	}

	p.cache.SetDefault(team, rating)
	return rating, true
}

func (p *HTTPProvider) fetch(ctx context.Context, team string) (models.TeamRating, error) {
	endpoint := fmt.Sprintf("%s/ratings?team=%s", p.baseURL, url.QueryEscape(team))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.TeamRating{}, fmt.Errorf("failed to build ratings request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return models.TeamRating{}, fmt.Errorf("ratings fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TeamRating{}, models.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.TeamRating{}, fmt.Errorf("ratings service returned status %d", resp.StatusCode)
	}

	var rating models.TeamRating
	if err := json.NewDecoder(resp.Body).Decode(&rating); err != nil {
		return models.TeamRating{}, fmt.Errorf("failed to decode rating: %w", err)
	}

	return rating, nil
}

// Flush drops every cached rating so the next cycle refetches from the
// provider. Run on a slow schedule to pick up recalculated ratings
// before their TTL would expire.
func (p *HTTPProvider) Flush() {
	p.cache.Flush()
}

// Close releases the underlying HTTP client resources
func (p *HTTPProvider) Close() error {
	return p.client.Close()
}
