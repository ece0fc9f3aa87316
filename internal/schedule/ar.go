package schedule

import (
	"math"

	"stock-advisor/internal/mathx"
	"stock-advisor/internal/types"
)

// AR model bounds. Orders are searched up to maxOrder by AIC; the series is
// differenced once before fitting.
const (
	minHistory = 20
	maxOrder   = 5
	fixedOrder = 2
)

// pathForecast is the scheduler's price path with its confidence band.
type pathForecast struct {
	prices []float64
	lower  []float64
	upper  []float64
}

// forecastPath produces the horizon forecast. Order selection by AIC first,
// a fixed-order fit second, the linear trend with volatility bands last.
// The returned flag reports use of the linear fallback.
func forecastPath(closes []float64, horizon int, z float64) (pathForecast, bool) {
	if len(closes) >= minHistory {
		if fc, err := arForecast(closes, horizon, z, 0); err == nil {
			return fc, false
		}
		if fc, err := arForecast(closes, horizon, z, fixedOrder); err == nil {
			return fc, false
		}
	}
	return trendForecast(closes, horizon), true
}

// arForecast fits an autoregression on first differences and extrapolates
// it. order 0 means pick the order in [1, maxOrder] minimizing AIC. The
// h-step band width grows with sqrt(h) from the one-step residual sigma.
func arForecast(closes []float64, horizon int, z float64, order int) (pathForecast, error) {
	diffs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		diffs[i-1] = closes[i] - closes[i-1]
	}

	var coefs []float64
	var sigma float64
	var err error
	if order > 0 {
		coefs, sigma, err = fitAR(diffs, order)
	} else {
		bestAIC := math.Inf(1)
		for p := 1; p <= maxOrder; p++ {
			c, s, e := fitAR(diffs, p)
			if e != nil {
				continue
			}
			n := float64(len(diffs) - p)
			aic := n*math.Log(s*s+1e-12) + 2*float64(p+1)
			if aic < bestAIC {
				bestAIC, coefs, sigma = aic, c, s
			}
		}
		if coefs == nil {
			err = mathx.ErrSingular
		}
	}
	if err != nil {
		return pathForecast{}, err
	}

	p := len(coefs) - 1
	recent := append([]float64(nil), diffs[len(diffs)-p:]...)
	level := closes[len(closes)-1]
	fc := pathForecast{
		prices: make([]float64, horizon),
		lower:  make([]float64, horizon),
		upper:  make([]float64, horizon),
	}
	for h := 0; h < horizon; h++ {
		next := coefs[0]
		for j := 0; j < p; j++ {
			next += coefs[j+1] * recent[len(recent)-1-j]
		}
		recent = append(recent, next)
		level += next
		half := z * sigma * math.Sqrt(float64(h+1))
		fc.prices[h] = level
		fc.lower[h] = level - half
		fc.upper[h] = level + half
	}
	return fc, nil
}

// fitAR estimates an AR(p) with intercept by least squares, returning the
// coefficients (intercept first) and the residual standard deviation.
func fitAR(diffs []float64, p int) ([]float64, float64, error) {
	n := len(diffs) - p
	if n <= p+1 {
		return nil, 0, &types.InsufficientDataError{Need: 2*p + 2, Have: len(diffs)}
	}
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, p+1)
		row[0] = 1
		for j := 0; j < p; j++ {
			row[j+1] = diffs[p+i-1-j]
		}
		X[i] = row
		y[i] = diffs[p+i]
	}
	coefs, err := mathx.LeastSquares(X, y, nil)
	if err != nil {
		return nil, 0, err
	}
	sse := 0.0
	for i := 0; i < n; i++ {
		pred := 0.0
		for j := range coefs {
			pred += coefs[j] * X[i][j]
		}
		r := y[i] - pred
		sse += r * r
	}
	return coefs, math.Sqrt(sse / float64(n)), nil
}

// trendForecast extrapolates an OLS line with bands sized by annualized
// historical volatility.
func trendForecast(closes []float64, horizon int) pathForecast {
	n := len(closes)
	fc := pathForecast{
		prices: make([]float64, horizon),
		lower:  make([]float64, horizon),
		upper:  make([]float64, horizon),
	}
	if n == 0 {
		return fc
	}

	slope, intercept := 0.0, closes[n-1]
	if n >= 2 {
		X := make([][]float64, n)
		for i := range X {
			X[i] = []float64{1, float64(i)}
		}
		if beta, err := mathx.LeastSquares(X, closes, nil); err == nil {
			intercept, slope = beta[0], beta[1]
		}
	}

	rets := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if closes[i-1] != 0 {
			rets = append(rets, closes[i]/closes[i-1]-1)
		}
	}
	vol := mathx.Std(rets) * math.Sqrt(252)

	for h := 0; h < horizon; h++ {
		price := intercept + slope*float64(n+h)
		fc.prices[h] = price
		fc.lower[h] = price - 1.96*vol*price
		fc.upper[h] = price + 1.96*vol*price
	}
	return fc
}
