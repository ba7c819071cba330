package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/metrics"
	"github.com/yourusername/betmaster/internal/models"
)

// Collector fans a cycle's fetch out to every configured source with a
// per-source timeout. A failing or slow source is logged and skipped;
// the cycle proceeds with whatever arrived.
type Collector struct {
	sources []Source
	timeout time.Duration
	logger  *logrus.Logger
}

// NewCollector creates a collector over the given sources
func NewCollector(sources []Source, timeout time.Duration, logger *logrus.Logger) *Collector {
	return &Collector{
		sources: sources,
		timeout: timeout,
		logger:  logger,
	}
}

// Collect fetches from all sources concurrently and returns the merged
// quote list. Source failures are soft: they never fail the cycle.
func (c *Collector) Collect(ctx context.Context) []models.OddsQuote {
	var (
		mu     sync.Mutex
		quotes []models.OddsQuote
		wg     sync.WaitGroup
	)

	for _, source := range c.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			fetched, err := src.Fetch(fetchCtx)
			if err != nil {
				metrics.RecordSourceFailure(src.Name())
				if c.logger != nil {
					c.logger.WithError(err).WithField("source", src.Name()).Warn("Source absent from cycle")
				}
				return
			}

			metrics.RecordQuotes(src.Name(), len(fetched))
			mu.Lock()
			quotes = append(quotes, fetched...)
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return quotes
}

// LatestPrice returns the freshest observation any watching source holds
// for a selection. Poll-only sources do not participate; with no watcher
// reporting, ok is false and the caller keeps its snapshot price.
func (c *Collector) LatestPrice(home, away string, mt models.MarketType, sel models.Selection) (models.OddsQuote, bool) {
	var (
		best  models.OddsQuote
		found bool
	)
	for _, source := range c.sources {
		watcher, ok := source.(PriceWatcher)
		if !ok {
			continue
		}
		q, ok := watcher.LatestQuote(home, away, mt, sel)
		if !ok {
			continue
		}
		if !found || q.ObservedAt.After(best.ObservedAt) {
			best = q
			found = true
		}
	}
	return best, found
}
