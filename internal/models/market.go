package models

// MarketType identifies a betting market on a football match
type MarketType string

const (
	MarketMatchOdds   MarketType = "MATCH_ODDS"
	MarketOverUnder25 MarketType = "OVER_UNDER_25"
	MarketOverUnder35 MarketType = "OVER_UNDER_35"
	MarketBTTS        MarketType = "BTTS"
)

// Selection identifies one outcome within a market
type Selection string

const (
	SelectionHome  Selection = "HOME"
	SelectionDraw  Selection = "DRAW"
	SelectionAway  Selection = "AWAY"
	SelectionOver  Selection = "OVER"
	SelectionUnder Selection = "UNDER"
	SelectionYes   Selection = "YES"
	SelectionNo    Selection = "NO"
)

// MarketSelections returns the complete selection set for a market type.
// A market is only evaluable when prices exist for every selection,
// since de-margining requires the full book.
func MarketSelections(mt MarketType) []Selection {
	switch mt {
	case MarketMatchOdds:
		return []Selection{SelectionHome, SelectionDraw, SelectionAway}
	case MarketOverUnder25, MarketOverUnder35:
		return []Selection{SelectionOver, SelectionUnder}
	case MarketBTTS:
		return []Selection{SelectionYes, SelectionNo}
	default:
		return nil
	}
}

// TotalLine returns the goal line for totals markets, 0 otherwise
func TotalLine(mt MarketType) float64 {
	switch mt {
	case MarketOverUnder25:
		return 2.5
	case MarketOverUnder35:
		return 3.5
	default:
		return 0
	}
}

// AllMarketTypes lists every market the engine evaluates
func AllMarketTypes() []MarketType {
	return []MarketType{MarketMatchOdds, MarketOverUnder25, MarketOverUnder35, MarketBTTS}
}

// IsValidMarketType reports whether mt is a known market type
func IsValidMarketType(mt MarketType) bool {
	switch mt {
	case MarketMatchOdds, MarketOverUnder25, MarketOverUnder35, MarketBTTS:
		return true
	default:
		return false
	}
}
