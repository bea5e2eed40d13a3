package analysis

import (
	"math"
	"sort"
)

// ranks assigns fractional ranks (1-based, midrank for ties) to xs
func ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// midrank over the tie run [i, j]
		rank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = rank
		}
		i = j + 1
	}
	return out
}

// pearson returns the Pearson correlation of two equal-length vectors,
// or 0 when either vector has zero variance
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// SpearmanCorrelation returns the Spearman rank correlation of two
// equal-length vectors. Ties get midranks.
func SpearmanCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	return pearson(ranks(x), ranks(y))
}

// RankSumPValue returns the one-sided p-value of the Wilcoxon rank-sum
// (Mann-Whitney) test for the alternative that inGroup is stochastically
// greater than outGroup, using the normal approximation with tie
// correction and continuity correction. Degenerate inputs (an empty
// group or all values tied) yield p = 1.
func RankSumPValue(inGroup, outGroup []float64) float64 {
	n1 := len(inGroup)
	n2 := len(outGroup)
	if n1 == 0 || n2 == 0 {
		return 1
	}
	n := n1 + n2

	combined := make([]float64, 0, n)
	combined = append(combined, inGroup...)
	combined = append(combined, outGroup...)
	r := ranks(combined)

	var r1 float64
	for i := 0; i < n1; i++ {
		r1 += r[i]
	}
	u := r1 - float64(n1*(n1+1))/2

	// Tie correction over rank runs
	sorted := append([]float64(nil), combined...)
	sort.Float64s(sorted)
	var tieSum float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && sorted[j+1] == sorted[i] {
			j++
		}
		t := float64(j - i + 1)
		tieSum += t*t*t - t
		i = j + 1
	}

	mean := float64(n1) * float64(n2) / 2
	variance := float64(n1) * float64(n2) / 12 *
		(float64(n+1) - tieSum/float64(n*(n-1)))
	if variance <= 0 {
		return 1
	}

	z := (u - mean - 0.5) / math.Sqrt(variance)
	return 1 - 0.5*(1+math.Erf(z/math.Sqrt2))
}
