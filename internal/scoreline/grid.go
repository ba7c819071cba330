package scoreline

// ScoreGrid is a probability distribution over final match scores.
// P[i][j] is the probability of the home side finishing on
// HomeOffset+i goals and the away side on AwayOffset+j, with the
// residual axes truncated at the cutoff (tail mass folded into the
// last cell). The grid always sums to 1.
type ScoreGrid struct {
	HomeOffset int
	AwayOffset int
	P          [][]float64
}

// residualGrid builds the joint distribution of residual goals from two
// truncated Poisson marginals, with a Dixon-Coles low-score adjustment
// controlled by rho. rho = 0 leaves the independent product untouched.
func residualGrid(lambdaHome, lambdaAway float64, cutoff int, rho float64) [][]float64 {
	ph := truncatedPMF(lambdaHome, cutoff)
	pa := truncatedPMF(lambdaAway, cutoff)

	grid := make([][]float64, cutoff+1)
	for i := range grid {
		grid[i] = make([]float64, cutoff+1)
		for j := range grid[i] {
			grid[i][j] = ph[i] * pa[j]
		}
	}

	if rho != 0 {
		grid[0][0] *= 1 - lambdaHome*lambdaAway*rho
		if cutoff >= 1 {
			grid[0][1] *= 1 + lambdaHome*rho
			grid[1][0] *= 1 + lambdaAway*rho
			grid[1][1] *= 1 - rho
		}
		clampNonNegative(grid)
		normalize(grid)
	}

	return grid
}

// convolve shifts the residual grid by the observed score. The final
// score axes keep the residual truncation; offsets carry the observed
// goals so market sums see true final scorelines.
func convolve(residual [][]float64, homeScore, awayScore int) *ScoreGrid {
	return &ScoreGrid{
		HomeOffset: homeScore,
		AwayOffset: awayScore,
		P:          residual,
	}
}

// Sum returns the total probability mass of the grid
func (g *ScoreGrid) Sum() float64 {
	total := 0.0
	for i := range g.P {
		for j := range g.P[i] {
			total += g.P[i][j]
		}
	}
	return total
}

// Prob returns the probability of an exact final score
func (g *ScoreGrid) Prob(home, away int) float64 {
	i := home - g.HomeOffset
	j := away - g.AwayOffset
	if i < 0 || j < 0 || i >= len(g.P) || j >= len(g.P[0]) {
		return 0
	}
	return g.P[i][j]
}

// RegionSum sums the probability of every final score satisfying the
// predicate, which receives true final goal counts
func (g *ScoreGrid) RegionSum(pred func(home, away int) bool) float64 {
	total := 0.0
	for i := range g.P {
		for j := range g.P[i] {
			if pred(g.HomeOffset+i, g.AwayOffset+j) {
				total += g.P[i][j]
			}
		}
	}
	return total
}

func clampNonNegative(grid [][]float64) {
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] < 0 {
				grid[i][j] = 0
			}
		}
	}
}

func normalize(grid [][]float64) {
	total := 0.0
	for i := range grid {
		for j := range grid[i] {
			total += grid[i][j]
		}
	}
	if total <= 0 {
		return
	}
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] /= total
		}
	}
}
