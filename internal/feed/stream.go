package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/aggregate"
	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

// ReconnectConfig controls stream reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamMessage is one frame from the odds stream
type streamMessage struct {
	Op     string     `json:"op"`
	Quotes []quoteDTO `json:"quotes,omitempty"`
}

// StreamSource keeps a websocket connection to a streaming odds feed
// and buffers the latest quote per (match, market, selection). Fetch
// drains the buffer, so each cycle sees the freshest stream state
// without blocking on the socket. A separate undrained map keeps the
// last observation per selection for decision-time price re-reads.
type StreamSource struct {
	name      string
	url       string
	apiKey    string
	reconnect ReconnectConfig
	logger    *logrus.Logger
	now       func() time.Time

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	buffer    map[string]models.OddsQuote
	latest    map[string]models.OddsQuote
}

// NewStreamSource creates a streaming source from its configuration
func NewStreamSource(cfg config.SourceConfig, logger *logrus.Logger) *StreamSource {
	return &StreamSource{
		name:      cfg.Name,
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		reconnect: DefaultReconnectConfig(),
		logger:    logger,
		now:       time.Now,
		buffer:    make(map[string]models.OddsQuote),
		latest:    make(map[string]models.OddsQuote),
	}
}

// Name returns the configured source name
func (s *StreamSource) Name() string {
	return s.name
}

// Run maintains the connection until the context is cancelled,
// reconnecting with exponential backoff after failures
func (s *StreamSource) Run(ctx context.Context) {
	backoff := s.reconnect.InitialBackoff
	retries := 0

	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.connect(ctx); err != nil {
			retries++
			if s.reconnect.MaxRetries > 0 && retries > s.reconnect.MaxRetries {
				if s.logger != nil {
					s.logger.WithError(err).Errorf("Stream %s giving up after %d attempts", s.name, retries-1)
				}
				return
			}
			if s.logger != nil {
				s.logger.WithError(err).Warnf("Stream %s reconnecting in %s", s.name, backoff)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * s.reconnect.BackoffMultiplier)
			if backoff > s.reconnect.MaxBackoff {
				backoff = s.reconnect.MaxBackoff
			}
			continue
		}

		retries = 0
		backoff = s.reconnect.InitialBackoff
		s.readLoop(ctx)
	}
}

// Fetch returns the buffered stream state. The stream source never
// blocks the cycle: it reports whatever has arrived since the last
// drain.
func (s *StreamSource) Fetch(ctx context.Context) ([]models.OddsQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected && len(s.buffer) == 0 {
		return nil, fmt.Errorf("stream %s not connected: %w", s.name, models.ErrSourceTimeout)
	}

	quotes := make([]models.OddsQuote, 0, len(s.buffer))
	for _, q := range s.buffer {
		quotes = append(quotes, q)
	}
	s.buffer = make(map[string]models.OddsQuote)
	return quotes, nil
}

func (s *StreamSource) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	var header map[string][]string
	if s.apiKey != "" {
		header = map[string][]string{"X-API-Key": {s.apiKey}}
	}

	conn, _, err := dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to stream %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Infof("Stream %s connected", s.name)
	}
	return nil
}

func (s *StreamSource) readLoop(ctx context.Context) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		s.conn = nil
		s.connected = false
		s.mu.Unlock()
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && s.logger != nil {
				s.logger.WithError(err).Warnf("Stream %s read failed", s.name)
			}
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Debugf("Stream %s dropped malformed frame", s.name)
			}
			continue
		}
		if msg.Op == "heartbeat" {
			continue
		}

		s.ingest(msg.Quotes)
	}
}

// ingest replaces the buffered quote per selection with the newest one
func (s *StreamSource) ingest(dtos []quoteDTO) {
	observedAt := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dto := range dtos {
		q, ok := dto.toQuote(s.name, observedAt)
		if !ok {
			continue
		}
		key := watchKey(q.HomeTeam, q.AwayTeam, q.MarketType, q.Selection)
		s.buffer[key] = q
		s.latest[key] = q
	}
}

// LatestQuote returns the most recent observation for a selection.
// Unlike Fetch this drains nothing, so the gate can compare the price it
// evaluated with against whatever the stream has seen since.
func (s *StreamSource) LatestQuote(home, away string, mt models.MarketType, sel models.Selection) (models.OddsQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.latest[watchKey(home, away, mt, sel)]
	return q, ok
}

// watchKey identifies a selection by normalized team names so quotes
// from sources with different naming conventions land on the same entry
func watchKey(home, away string, mt models.MarketType, sel models.Selection) string {
	return aggregate.NormalizeTeam(home) + "|" + aggregate.NormalizeTeam(away) + "|" + string(mt) + "|" + string(sel)
}
