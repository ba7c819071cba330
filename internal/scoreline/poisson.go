// Package scoreline computes full-match score probability grids from
// team ratings and live match state.
package scoreline

import "math"

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda).
// Computed in log space to stay stable for large k.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logGamma, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - logGamma)
}

// PoissonCDF returns P(X <= k) for X ~ Poisson(lambda)
func PoissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i <= k; i++ {
		sum += PoissonPMF(i, lambda)
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// truncatedPMF returns the Poisson pmf over 0..cutoff with the upper
// tail mass folded into the cutoff cell, so the vector sums to 1
func truncatedPMF(lambda float64, cutoff int) []float64 {
	p := make([]float64, cutoff+1)
	for k := 0; k < cutoff; k++ {
		p[k] = PoissonPMF(k, lambda)
	}
	p[cutoff] = 1 - PoissonCDF(cutoff-1, lambda)
	if p[cutoff] < 0 {
		p[cutoff] = 0
	}
	return p
}
