package models

import (
	"time"
)

// ResolutionOutcome tags the result of resolving raw quotes against the
// canonical match set
type ResolutionOutcome string

const (
	ResolutionMatched   ResolutionOutcome = "matched"
	ResolutionAmbiguous ResolutionOutcome = "ambiguous"
	ResolutionNoMatch   ResolutionOutcome = "no_match"
)

// MatchResolution carries the outcome of identity resolution for a group
// of quotes. Ambiguous groups are excluded from the cycle and logged.
type MatchResolution struct {
	Outcome ResolutionOutcome `json:"outcome"`
	MatchID string            `json:"match_id,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

func (r MatchResolution) String() string {
	if r.Detail == "" {
		return string(r.Outcome)
	}
	return string(r.Outcome) + ": " + r.Detail
}

// CanonicalMatch is the deduplicated view of one football match across
// all odds sources, with the best available book per market
type CanonicalMatch struct {
	MatchID     string    `json:"match_id" validate:"required"`
	HomeTeam    string    `json:"home_team" validate:"required"`
	AwayTeam    string    `json:"away_team" validate:"required"`
	Competition string    `json:"competition"`
	KickoffTime time.Time `json:"kickoff_time" validate:"required"`

	// Live state taken from the freshest contributing quote
	Live      bool `json:"live"`
	Minute    int  `json:"minute"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`

	Books      map[MarketType]*MarketBook `json:"books"`
	SourceIDs  []string                   `json:"source_ids"`
	SnapshotAt time.Time                  `json:"snapshot_at"`
}

// Book returns the market book for a market type, false if no source
// priced it
func (m *CanonicalMatch) Book(mt MarketType) (*MarketBook, bool) {
	b, ok := m.Books[mt]
	return b, ok
}

// GoalsScored returns the current total goals in the match
func (m *CanonicalMatch) GoalsScored() int {
	return m.HomeScore + m.AwayScore
}

// TrailingSide returns which side is behind, or empty when level
func (m *CanonicalMatch) TrailingSide() Selection {
	switch {
	case m.HomeScore < m.AwayScore:
		return SelectionHome
	case m.AwayScore < m.HomeScore:
		return SelectionAway
	default:
		return ""
	}
}
