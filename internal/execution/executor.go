// Package execution forwards approved bet intents to the execution
// collaborator, or records them in paper mode.
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/feed"
	"github.com/yourusername/betmaster/internal/models"
)

// Executor submits approved intents. Submission failures are reported
// to the caller for logging; intents are never retried across cycles.
type Executor interface {
	SubmitIntent(ctx context.Context, intent *models.BetIntent) error
	Mode() string
}

// NewExecutor builds the executor matching the configured mode
func NewExecutor(cfg config.ExecutionConfig, logger *logrus.Logger) Executor {
	if cfg.Mode == "live" {
		return NewHTTPExecutor(cfg, logger)
	}
	return NewPaperExecutor(logger)
}

// HTTPExecutor submits intents to the live execution service
type HTTPExecutor struct {
	url    string
	client *feed.RateLimitedHTTPClient
	logger *logrus.Logger
}

// NewHTTPExecutor creates a live executor from configuration
func NewHTTPExecutor(cfg config.ExecutionConfig, logger *logrus.Logger) *HTTPExecutor {
	clientCfg := feed.DefaultHTTPClientConfig()
	clientCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	// An intent must not be submitted twice; retries are disabled and
	// failures surface to the caller instead.
	clientCfg.MaxRetries = 0

	return &HTTPExecutor{
		url:    cfg.URL,
		client: feed.NewRateLimitedHTTPClient(clientCfg, logger),
		logger: logger,
	}
}

// Mode reports "live"
func (e *HTTPExecutor) Mode() string { return "live" }

// SubmitIntent posts the intent to the execution service
func (e *HTTPExecutor) SubmitIntent(ctx context.Context, intent *models.BetIntent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	resp, err := e.client.Post(ctx, e.url+"/intents", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("intent submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("execution service returned status %d", resp.StatusCode)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"intent_id": intent.ID,
			"match_id":  intent.MatchID,
			"stake":     intent.Stake.String(),
		}).Info("Intent submitted")
	}
	return nil
}

// Close releases the underlying HTTP client resources
func (e *HTTPExecutor) Close() error {
	return e.client.Close()
}

// PaperExecutor records intents without placing real money. The audit
// trail in the repository is the paper book.
type PaperExecutor struct {
	logger *logrus.Logger
}

// NewPaperExecutor creates a paper-mode executor
func NewPaperExecutor(logger *logrus.Logger) *PaperExecutor {
	return &PaperExecutor{logger: logger}
}

// Mode reports "paper"
func (e *PaperExecutor) Mode() string { return "paper" }

// SubmitIntent logs the intent and succeeds
func (e *PaperExecutor) SubmitIntent(ctx context.Context, intent *models.BetIntent) error {
	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"intent_id": intent.ID,
			"match_id":  intent.MatchID,
			"market":    intent.MarketType,
			"selection": intent.Selection,
			"price":     intent.Price,
			"stake":     intent.Stake.String(),
		}).Info("Paper intent recorded")
	}
	return nil
}
