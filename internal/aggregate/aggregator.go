package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/metrics"
	"github.com/yourusername/betmaster/internal/models"
)

// Exclusion reasons reported to metrics and the cycle log
const (
	ExclusionAmbiguous    = "ambiguous"
	ExclusionSuspectPrice = "suspect_price"
	ExclusionInvalidPrice = "invalid_price"
)

// Aggregator merges per-source odds quotes into canonical matches with
// the best available price per selection
type Aggregator struct {
	kickoffTolerance    time.Duration
	divergenceTolerance float64
	logger              *logrus.Logger
}

// NewAggregator creates an aggregator with the given grouping tolerances
func NewAggregator(kickoffTolerance time.Duration, divergenceTolerance float64, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		kickoffTolerance:    kickoffTolerance,
		divergenceTolerance: divergenceTolerance,
		logger:              logger,
	}
}

// Aggregate deduplicates the cycle's quotes into canonical matches.
// Quotes whose identity is ambiguous and prices that diverge from the
// consensus are excluded, never guessed at.
func (a *Aggregator) Aggregate(quotes []models.OddsQuote, now time.Time) []*models.CanonicalMatch {
	byPair := make(map[string][]models.OddsQuote)
	for _, q := range quotes {
		if q.Price <= 1 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
			a.exclude(ExclusionInvalidPrice, q, "price must be greater than 1")
			continue
		}
		byPair[pairKey(q.HomeTeam, q.AwayTeam)] = append(byPair[pairKey(q.HomeTeam, q.AwayTeam)], q)
	}

	var matches []*models.CanonicalMatch
	for _, group := range byPair {
		matches = append(matches, a.resolveGroup(group, now)...)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].MatchID < matches[j].MatchID })
	return matches
}

// resolveGroup splits quotes naming the same team pair into distinct
// matches by kickoff time, then builds one canonical match per cluster
func (a *Aggregator) resolveGroup(group []models.OddsQuote, now time.Time) []*models.CanonicalMatch {
	reps := a.kickoffClusters(group)

	clusters := make(map[int][]models.OddsQuote)
	for _, q := range group {
		idx, resolution := a.assign(q, reps)
		if resolution.Outcome != models.ResolutionMatched {
			a.exclude(ExclusionAmbiguous, q, resolution.String())
			continue
		}
		clusters[idx] = append(clusters[idx], q)
	}

	var matches []*models.CanonicalMatch
	for idx, cluster := range clusters {
		if m := a.buildMatch(cluster, reps[idx], now); m != nil {
			matches = append(matches, m)
		}
	}
	return matches
}

// kickoffClusters returns one representative kickoff per distinct match.
// Quotes further apart than the tolerance are different matches.
func (a *Aggregator) kickoffClusters(group []models.OddsQuote) []time.Time {
	kickoffs := make([]time.Time, 0, len(group))
	for _, q := range group {
		kickoffs = append(kickoffs, q.KickoffTime)
	}
	sort.Slice(kickoffs, func(i, j int) bool { return kickoffs[i].Before(kickoffs[j]) })

	var reps []time.Time
	for _, k := range kickoffs {
		if len(reps) == 0 || k.Sub(reps[len(reps)-1]) > a.kickoffTolerance {
			reps = append(reps, k)
		}
	}
	return reps
}

// assign resolves one quote to a kickoff cluster. A quote within
// tolerance of more than one representative is ambiguous.
func (a *Aggregator) assign(q models.OddsQuote, reps []time.Time) (int, models.MatchResolution) {
	matched := -1
	count := 0
	for i, rep := range reps {
		d := q.KickoffTime.Sub(rep)
		if d < 0 {
			d = -d
		}
		if d <= a.kickoffTolerance {
			matched = i
			count++
		}
	}

	switch count {
	case 1:
		return matched, models.MatchResolution{Outcome: models.ResolutionMatched}
	case 0:
		return -1, models.MatchResolution{Outcome: models.ResolutionNoMatch, Detail: "kickoff outside every cluster"}
	default:
		return -1, models.MatchResolution{Outcome: models.ResolutionAmbiguous, Detail: "kickoff within tolerance of multiple matches"}
	}
}

// buildMatch assembles a canonical match from one cluster of quotes
func (a *Aggregator) buildMatch(cluster []models.OddsQuote, kickoff time.Time, now time.Time) *models.CanonicalMatch {
	if len(cluster) == 0 {
		return nil
	}

	// Live state comes from the freshest quote
	freshest := cluster[0]
	for _, q := range cluster[1:] {
		if q.ObservedAt.After(freshest.ObservedAt) {
			freshest = q
		}
	}

	match := &models.CanonicalMatch{
		MatchID:     MatchID(freshest.HomeTeam, freshest.AwayTeam, kickoff),
		HomeTeam:    freshest.HomeTeam,
		AwayTeam:    freshest.AwayTeam,
		Competition: freshest.Competition,
		KickoffTime: kickoff,
		Live:        freshest.Live,
		Minute:      freshest.Minute,
		HomeScore:   freshest.HomeScore,
		AwayScore:   freshest.AwayScore,
		Books:       make(map[models.MarketType]*models.MarketBook),
		SnapshotAt:  now,
	}

	seenSources := make(map[string]bool)
	bySelection := make(map[models.MarketType]map[models.Selection][]models.OddsQuote)
	for _, q := range cluster {
		if !seenSources[q.SourceID] {
			seenSources[q.SourceID] = true
			match.SourceIDs = append(match.SourceIDs, q.SourceID)
		}
		if bySelection[q.MarketType] == nil {
			bySelection[q.MarketType] = make(map[models.Selection][]models.OddsQuote)
		}
		bySelection[q.MarketType][q.Selection] = append(bySelection[q.MarketType][q.Selection], q)
	}
	sort.Strings(match.SourceIDs)

	for mt, selections := range bySelection {
		book := &models.MarketBook{
			MarketType: mt,
			Prices:     make(map[models.Selection]models.PricedSelection),
		}
		for sel, quotes := range selections {
			if best, ok := a.bestPrice(quotes); ok {
				book.Prices[sel] = best
			}
		}
		if len(book.Prices) > 0 {
			match.Books[mt] = book
		}
	}

	return match
}

// bestPrice picks the highest price for a selection. Sources disagreeing
// beyond the relative tolerance mean at least one of them is stale or
// mispriced with no way to tell which, so the whole quote set is suspect
// and sits the cycle out.
func (a *Aggregator) bestPrice(quotes []models.OddsQuote) (models.PricedSelection, bool) {
	if len(quotes) >= 2 {
		low, high := quotes[0].Price, quotes[0].Price
		for _, q := range quotes[1:] {
			low = math.Min(low, q.Price)
			high = math.Max(high, q.Price)
		}
		if (high-low)/medianPrice(quotes) > a.divergenceTolerance {
			for _, q := range quotes {
				a.exclude(ExclusionSuspectPrice, q, "prices diverge beyond tolerance")
			}
			return models.PricedSelection{}, false
		}
	}

	best := quotes[0]
	for _, q := range quotes[1:] {
		if q.Price > best.Price {
			best = q
		}
	}
	return models.PricedSelection{
		Selection:  best.Selection,
		Price:      best.Price,
		SourceID:   best.SourceID,
		ObservedAt: best.ObservedAt,
	}, true
}

func (a *Aggregator) exclude(reason string, q models.OddsQuote, detail string) {
	metrics.RecordExclusion(reason)
	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"reason":    reason,
			"source":    q.SourceID,
			"home_team": q.HomeTeam,
			"away_team": q.AwayTeam,
			"market":    q.MarketType,
			"selection": q.Selection,
			"price":     q.Price,
		}).Warn(detail)
	}
}

func medianPrice(quotes []models.OddsQuote) float64 {
	prices := make([]float64, 0, len(quotes))
	for _, q := range quotes {
		prices = append(prices, q.Price)
	}
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}
