package forecast

import (
	"math"
	"time"

	"stock-advisor/internal/mathx"
	"stock-advisor/internal/types"
)

// linearFallback fits an ordinary least-squares line through the closes and
// extrapolates it with symmetric residual bands. Used when the history is
// too short for the seasonal model or the seasonal fit fails.
func linearFallback(series types.PriceSeries, horizonDays int) *types.SeasonalForecast {
	n := len(series)
	y := series.Closes()

	slope, intercept := 0.0, mathx.Mean(y)
	sigma := mathx.Std(y)
	if n >= 2 {
		X := make([][]float64, n)
		for i := range X {
			X[i] = []float64{1, float64(i)}
		}
		if beta, err := mathx.LeastSquares(X, y, nil); err == nil {
			intercept, slope = beta[0], beta[1]
			sse := 0.0
			for i := 0; i < n; i++ {
				r := y[i] - (intercept + slope*float64(i))
				sse += r * r
			}
			sigma = math.Sqrt(sse / float64(n))
		}
	}

	points := make([]types.ForecastPoint, 0, horizonDays)
	date := series[n-1].Date
	if date.IsZero() {
		date = time.Now()
	}
	for k := 1; k <= horizonDays; k++ {
		date = nextBusinessDay(date)
		yhat := intercept + slope*float64(n-1+k)
		half := zFallback * sigma * uncertaintyGrowth(k)
		points = append(points, types.ForecastPoint{
			Date:  date,
			Yhat:  types.JSONFloat(math.Max(yhat, 0)),
			Lower: types.JSONFloat(math.Max(yhat-half, 0)),
			Upper: types.JSONFloat(yhat + half),
		})
	}
	return &types.SeasonalForecast{Points: points, FallbackUsed: true}
}
