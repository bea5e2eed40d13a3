package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpearmanCorrelation_Monotonic(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	yUp := []float64{10, 20, 30, 40, 50}
	yDown := []float64{50, 40, 30, 20, 10}

	assert.InDelta(t, 1.0, SpearmanCorrelation(x, yUp), 1e-12)
	assert.InDelta(t, -1.0, SpearmanCorrelation(x, yDown), 1e-12)
}

func TestSpearmanCorrelation_NonlinearMonotone(t *testing.T) {
	// Rank correlation only sees order, so an exponential relation is
	// still a perfect 1.0
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 16, 256}

	assert.InDelta(t, 1.0, SpearmanCorrelation(x, y), 1e-12)
}

func TestSpearmanCorrelation_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, SpearmanCorrelation(nil, nil))
	assert.Equal(t, 0.0, SpearmanCorrelation([]float64{1, 2}, []float64{1}))
	// Zero variance on one side
	assert.Equal(t, 0.0, SpearmanCorrelation([]float64{1, 2, 3}, []float64{5, 5, 5}))
}

func TestSpearmanCorrelation_TiesGetMidranks(t *testing.T) {
	x := []float64{1, 2, 2, 3}
	y := []float64{1, 2, 2, 3}

	assert.InDelta(t, 1.0, SpearmanCorrelation(x, y), 1e-12)
}

func TestRankSumPValue_ShiftedGroupIsSignificant(t *testing.T) {
	inGroup := []float64{5, 6, 7, 8, 9}
	outGroup := []float64{0, 1, 2, 3, 4}

	p := RankSumPValue(inGroup, outGroup)

	assert.Less(t, p, 0.05)
}

func TestRankSumPValue_OneSided(t *testing.T) {
	lower := []float64{0, 1, 2, 3, 4}
	higher := []float64{5, 6, 7, 8, 9}

	// The alternative is "inGroup greater", so the reversed direction
	// must not be significant
	p := RankSumPValue(lower, higher)

	assert.Greater(t, p, 0.5)
}

func TestRankSumPValue_Degenerate(t *testing.T) {
	assert.Equal(t, 1.0, RankSumPValue(nil, []float64{1, 2}))
	assert.Equal(t, 1.0, RankSumPValue([]float64{1, 2}, nil))
	// All values tied: zero variance
	assert.Equal(t, 1.0, RankSumPValue([]float64{3, 3, 3}, []float64{3, 3, 3}))
}

func TestRankSumPValue_IdenticalDistributions(t *testing.T) {
	inGroup := []float64{1, 3, 5, 7}
	outGroup := []float64{2, 4, 6, 8}

	p := RankSumPValue(inGroup, outGroup)

	assert.Greater(t, p, 0.2)
	assert.Less(t, p, 0.9)
}
