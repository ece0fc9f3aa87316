// Package mathx holds the small linear-algebra and statistics helpers
// shared by the forecasting components.
package mathx

import (
	"errors"
	"math"
	"sort"
)

// ErrSingular reports a linear system without a unique solution.
var ErrSingular = errors.New("singular linear system")

// Solve performs Gaussian elimination with partial pivoting on an augmented
// matrix [A|b] of n rows and n+1 columns. The input is clobbered.
func Solve(aug [][]float64) ([]float64, error) {
	n := len(aug)
	for i := 0; i < n; i++ {
		pivot := i
		for r := i + 1; r < n; r++ {
			if math.Abs(aug[r][i]) > math.Abs(aug[pivot][i]) {
				pivot = r
			}
		}
		aug[i], aug[pivot] = aug[pivot], aug[i]
		if math.Abs(aug[i][i]) < 1e-12 {
			return nil, ErrSingular
		}
		for r := i + 1; r < n; r++ {
			f := aug[r][i] / aug[i][i]
			for c := i; c <= n; c++ {
				aug[r][c] -= f * aug[i][c]
			}
		}
	}
	sol := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		s := aug[i][n]
		for c := i + 1; c < n; c++ {
			s -= aug[i][c] * sol[c]
		}
		sol[i] = s / aug[i][i]
	}
	return sol, nil
}

// LeastSquares solves min ||Xb - y|| with per-column ridge penalties via the
// normal equations. penalty has one entry per column of X; nil disables
// regularization.
func LeastSquares(X [][]float64, y []float64, penalty []float64) ([]float64, error) {
	if len(X) == 0 {
		return nil, errors.New("empty design matrix")
	}
	p := len(X[0])
	aug := make([][]float64, p)
	for i := range aug {
		aug[i] = make([]float64, p+1)
	}
	// Normal-equation layout: columns 0..p-1 are X'X, column p holds X'y.
	for r := range X {
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				aug[i][j] += X[r][i] * X[r][j]
			}
			aug[i][p] += X[r][i] * y[r]
		}
	}
	for i := 0; i < p && penalty != nil; i++ {
		aug[i][i] += penalty[i]
	}
	return Solve(aug)
}

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// Std returns the population standard deviation.
func Std(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := Mean(vals)
	s := 0.0
	for _, v := range vals {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(vals)))
}

// Quantile interpolates linearly over an already-sorted slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Median returns the middle value, interpolated for even lengths.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
