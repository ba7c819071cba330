package models

import (
	"time"
)

// TeamRating holds the modeling inputs for one team as supplied by the
// ratings provider. Attack and Defense are multiplicative factors around
// 1.0; HomeAdvantage applies only when the team plays at home.
type TeamRating struct {
	TeamID        string    `json:"team_id" validate:"required"`
	Attack        float64   `json:"attack" validate:"required,gt=0"`
	Defense       float64   `json:"defense" validate:"required,gt=0"`
	HomeAdvantage float64   `json:"home_advantage" validate:"gt=0"`
	// RecentForm and HeadToHead are pre-normalized signals in [0,1]
	// consumed by the confidence scorer. 0.5 is neutral.
	RecentForm float64   `json:"recent_form" validate:"gte=0,lte=1"`
	HeadToHead float64   `json:"head_to_head" validate:"gte=0,lte=1"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsStale reports whether the rating is older than the staleness window
func (r *TeamRating) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(r.UpdatedAt) > window
}

// MatchRatings pairs home and away ratings for one match. Fallback is
// set when either side's rating was missing or stale and league-average
// defaults were substituted; everything downstream treats the match as
// low confidence.
type MatchRatings struct {
	Home     TeamRating `json:"home"`
	Away     TeamRating `json:"away"`
	Fallback bool       `json:"fallback"`
}

// NeutralRating returns a league-average rating used when the provider
// has nothing usable for a team
func NeutralRating(teamID string) TeamRating {
	return TeamRating{
		TeamID:        teamID,
		Attack:        1.0,
		Defense:       1.0,
		HomeAdvantage: 1.0,
		RecentForm:    0.5,
		HeadToHead:    0.5,
	}
}
