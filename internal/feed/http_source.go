package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

// HTTPSource polls a bookmaker's odds endpoint once per cycle
type HTTPSource struct {
	name   string
	url    string
	apiKey string
	client *RateLimitedHTTPClient
	logger *logrus.Logger
	now    func() time.Time
}

// NewHTTPSource creates a polling source from its configuration
func NewHTTPSource(cfg config.SourceConfig, logger *logrus.Logger) *HTTPSource {
	clientCfg := DefaultHTTPClientConfig()
	clientCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	return &HTTPSource{
		name:   cfg.Name,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: NewRateLimitedHTTPClient(clientCfg, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Name returns the configured source name
func (s *HTTPSource) Name() string {
	return s.name
}

// Fetch retrieves the source's current odds snapshot
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.OddsQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch from %s returned status %d", s.name, resp.StatusCode)
	}

	var dtos []quoteDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("failed to decode quotes from %s: %w", s.name, err)
	}

	observedAt := s.now()
	quotes := make([]models.OddsQuote, 0, len(dtos))
	for _, dto := range dtos {
		q, ok := dto.toQuote(s.name, observedAt)
		if !ok {
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"source": s.name,
					"market": dto.MarketType,
				}).Debug("Dropped malformed quote")
			}
			continue
		}
		quotes = append(quotes, q)
	}

	return quotes, nil
}

// Close releases the underlying HTTP client resources
func (s *HTTPSource) Close() error {
	return s.client.Close()
}
