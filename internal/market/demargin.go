// Package market derives market probabilities from the scoreline grid
// and compares them against de-margined bookmaker prices.
package market

// RemoveMargin converts decimal prices for a complete market into fair
// probabilities by stripping the bookmaker's overround proportionally.
// The returned probabilities sum to exactly 1.
func RemoveMargin(prices []float64) []float64 {
	raw := make([]float64, len(prices))
	total := 0.0
	for i, p := range prices {
		raw[i] = 1.0 / p
		total += raw[i]
	}

	fair := make([]float64, len(prices))
	for i := range raw {
		fair[i] = raw[i] / total
	}
	return fair
}

// Overround returns the bookmaker margin of a complete market: the sum
// of naive implied probabilities minus 1
func Overround(prices []float64) float64 {
	total := 0.0
	for _, p := range prices {
		total += 1.0 / p
	}
	return total - 1
}
