// Package forecast produces multi-day price forecasts with confidence
// bands. The primary model is a structural fit (piecewise-linear trend,
// Fourier seasonality, exogenous regressors); it degrades to a linear
// extrapolation rather than ever propagating an error.
package forecast

import (
	"context"
	"math"
	"sort"
	"time"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/mathx"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// FallbackThreshold is the minimum history length for the seasonal model.
const FallbackThreshold = 30

// Intervals: 90% band for the seasonal model, 95% for the fallback.
const (
	zSeasonal = 1.645
	zFallback = 1.96
)

// uncertaintyGrowth widens the band for a date k business days past the
// observed history. Uncertainty grows with the square root of elapsed time,
// the random-walk assumption, rather than linearly.
func uncertaintyGrowth(daysAhead int) float64 {
	return 1.0 + math.Sqrt(float64(daysAhead))*0.01
}

// Forecast produces a business-day forecast over horizonDays. It never
// fails: short histories and model errors fall back to the linear
// extrapolation, flagged on the result.
func Forecast(ctx context.Context, series types.PriceSeries, horizonDays int) *types.SeasonalForecast {
	ctx, span := trace.StartSpan(ctx, "seasonal-forecast")
	defer span.End()

	if horizonDays <= 0 || len(series) == 0 {
		return &types.SeasonalForecast{}
	}
	if len(series) < FallbackThreshold {
		logger.Warn(ctx, "Not enough history for seasonal model, using linear fallback",
			"rows", len(series), "required", FallbackThreshold)
		return linearFallback(series, horizonDays)
	}
	fc, err := seasonalFit(ctx, series, horizonDays)
	if err != nil {
		logger.Warn(ctx, "Seasonal model failed, using linear fallback", "error", err)
		return linearFallback(series, horizonDays)
	}
	return fc
}

// column is one standardized design-matrix column with its ridge penalty.
type column struct {
	vals    []float64
	future  func(k int, date time.Time) float64
	penalty float64
}

func seasonalFit(ctx context.Context, series types.PriceSeries, horizonDays int) (*types.SeasonalForecast, error) {
	n := len(series)
	y := series.Closes()
	vols := make([]float64, n)
	for i, c := range series {
		vols[i] = c.Vol
	}

	// Adaptive trend flexibility: volatile instruments get a more
	// responsive trend (smaller changepoint penalty).
	vol20 := fillNaN(ta.RollingStdSeries(y, 20), 0)
	relVol := mathx.Mean(vol20) / math.Max(mathx.Mean(y), 1e-10)
	cpFlex := math.Min(0.05+relVol*0.5, 0.5)
	hingePenalty := 0.5 / cpFlex

	cols := []column{}
	addCol := func(vals []float64, penalty float64, future func(k int, date time.Time) float64) {
		cols = append(cols, column{vals: vals, penalty: penalty, future: future})
	}

	// Intercept and trend over normalized time; changepoint hinges give the
	// trend its piecewise-linear shape.
	denom := float64(n - 1)
	tIndex := func(i int) float64 { return float64(i) / denom }
	ones := make([]float64, n)
	trend := make([]float64, n)
	for i := 0; i < n; i++ {
		ones[i] = 1
		trend[i] = tIndex(i)
	}
	addCol(ones, 0, func(k int, _ time.Time) float64 { return 1 })
	addCol(trend, 0.01, func(k int, _ time.Time) float64 { return tIndex(n - 1 + k) })

	nCp := n / 30
	if nCp > 10 {
		nCp = 10
	}
	// Changepoints live in the first 95% of the history, so the trend near
	// the boundary is anchored by data on both sides.
	for c := 1; c <= nCp; c++ {
		cp := 0.95 * float64(c) / float64(nCp+1)
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Max(0, tIndex(i)-cp)
		}
		addCol(vals, hingePenalty, func(k int, _ time.Time) float64 {
			return math.Max(0, tIndex(n-1+k)-cp)
		})
	}

	// Seasonality on calendar-day offsets. Weekly seasonality stays
	// disabled: trading calendars exclude weekends already, and a weekly
	// component would leak weekend-shaped artifacts into business days.
	origin := series[0].Date
	dayOffset := func(d time.Time) float64 { return d.Sub(origin).Hours() / 24 }
	addSeasonal := func(period float64, order int) {
		for h := 1; h <= order; h++ {
			freq := 2 * math.Pi * float64(h) / period
			sin := make([]float64, n)
			cos := make([]float64, n)
			for i := 0; i < n; i++ {
				d := dayOffset(series[i].Date)
				sin[i] = math.Sin(freq * d)
				cos[i] = math.Cos(freq * d)
			}
			f := freq
			addCol(sin, 1.0, func(_ int, date time.Time) float64 { return math.Sin(f * dayOffset(date)) })
			addCol(cos, 1.0, func(_ int, date time.Time) float64 { return math.Cos(f * dayOffset(date)) })
		}
	}
	if n > 60 {
		addSeasonal(30.5, 3)  // monthly
		addSeasonal(91.25, 3) // quarterly
	}
	if n > 365 {
		addSeasonal(365.25, 5) // yearly
	}

	// Exogenous regressors, each winsorized at the 1st/99th percentile.
	// Future values hold recent rolling statistics constant: true future
	// regressor values are unobservable.
	logVol := make([]float64, n)
	for i, v := range vols {
		logVol[i] = math.Log1p(math.Max(v, 0))
	}
	addReg := func(vals []float64, heldValue float64) {
		w := winsorized(vals)
		addCol(w, 1.0, func(int, time.Time) float64 { return heldValue })
	}
	addReg(logVol, math.Log1p(math.Max(mathx.Median(tail(vols, 30)), 0)))

	volROC := fillNaN(ta.PctChangeSeries(vols, 5), 0)
	addReg(volROC, mathx.Mean(tail(volROC, 5)))

	vol5 := fillNaN(ta.RollingStdSeries(y, 5), 0)
	addReg(vol5, mathx.Mean(tail(vol5, 10)))
	addReg(vol20, mathx.Mean(tail(vol20, 10)))

	rsi := fillNaN(ta.RSISeries(y, 14), 50)
	addReg(rsi, mathx.Mean(tail(rsi, 5)))

	mom5 := fillNaN(ta.PctChangeSeries(y, 5), 0)
	mom10 := fillNaN(ta.PctChangeSeries(y, 10), 0)
	addReg(mom5, mathx.Mean(tail(mom5, 5)))
	addReg(mom10, mathx.Mean(tail(mom10, 5)))

	ma10 := backfilled(ta.SMASeries(y, 10))
	ma20 := backfilled(ta.SMASeries(y, 20))
	ma10dist := make([]float64, n)
	ma20dist := make([]float64, n)
	bbPos := make([]float64, n)
	bbStd := fillNaN(ta.RollingStdSeries(y, 20), 0)
	for i := 0; i < n; i++ {
		if ma10[i] != 0 {
			ma10dist[i] = y[i]/ma10[i] - 1
		}
		if ma20[i] != 0 {
			ma20dist[i] = y[i]/ma20[i] - 1
		}
		bbPos[i] = (y[i] - ma20[i]) / (2*bbStd[i] + 1e-10)
	}
	addReg(ma10dist, mathx.Mean(tail(ma10dist, 5)))
	addReg(ma20dist, mathx.Mean(tail(ma20dist, 5)))
	addReg(bbPos, mathx.Mean(tail(bbPos, 5)))

	// Calendar-effect flags come from the actual dates, so their future
	// closure ignores the held-constant scheme.
	if n > 40 {
		ms := make([]float64, n)
		me := make([]float64, n)
		for i, c := range series {
			ms[i] = monthStartFlag(c.Date)
			me[i] = monthEndFlag(c.Date)
		}
		addCol(ms, 1.0, func(_ int, date time.Time) float64 { return monthStartFlag(date) })
		addCol(me, 1.0, func(_ int, date time.Time) float64 { return monthEndFlag(date) })
	}
	if n > 250 {
		es := make([]float64, n)
		for i, c := range series {
			es[i] = earningsSeasonFlag(c.Date)
		}
		addCol(es, 1.0, func(_ int, date time.Time) float64 { return earningsSeasonFlag(date) })
	}

	// Standardize non-intercept columns so one ridge scale fits all.
	means := make([]float64, len(cols))
	stds := make([]float64, len(cols))
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, len(cols))
	}
	penalties := make([]float64, len(cols))
	for j, col := range cols {
		means[j] = mathx.Mean(col.vals)
		stds[j] = mathx.Std(col.vals)
		if j == 0 || stds[j] == 0 {
			means[j], stds[j] = 0, 1
		}
		penalties[j] = col.penalty
		for i := 0; i < n; i++ {
			X[i][j] = (col.vals[i] - means[j]) / stds[j]
		}
	}

	beta, err := mathx.LeastSquares(X, y, penalties)
	if err != nil {
		return nil, err
	}

	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		pred := 0.0
		for j := range beta {
			pred += beta[j] * X[i][j]
		}
		resid[i] = y[i] - pred
	}
	sigma := mathx.Std(resid)

	points := make([]types.ForecastPoint, 0, horizonDays)
	date := series[n-1].Date
	for k := 1; len(points) < horizonDays; k++ {
		date = nextBusinessDay(date)
		row := make([]float64, len(cols))
		for j, col := range cols {
			row[j] = (col.future(k, date) - means[j]) / stds[j]
		}
		yhat := 0.0
		for j := range beta {
			yhat += beta[j] * row[j]
		}
		half := zSeasonal * sigma * uncertaintyGrowth(len(points) + 1)
		points = append(points, types.ForecastPoint{
			Date:  date,
			Yhat:  types.JSONFloat(math.Max(yhat, 0)),
			Lower: types.JSONFloat(math.Max(yhat-half, 0)),
			Upper: types.JSONFloat(yhat + half),
		})
	}

	logger.Info(ctx, "Seasonal forecast complete",
		"rows", n, "horizon", horizonDays, "residual_sigma", sigma, "changepoint_flex", cpFlex)
	return &types.SeasonalForecast{Points: points}, nil
}

// nextBusinessDay advances to the following weekday.
func nextBusinessDay(d time.Time) time.Time {
	d = d.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func monthStartFlag(d time.Time) float64 {
	if d.Day() <= 3 {
		return 1
	}
	return 0
}

func monthEndFlag(d time.Time) float64 {
	if d.Day() >= 28 {
		return 1
	}
	return 0
}

// earningsSeasonFlag approximates the quarterly reporting window: the back
// half of the last month of each quarter.
func earningsSeasonFlag(d time.Time) float64 {
	if int(d.Month())%3 == 0 && d.Day() >= 15 && d.Day() <= 30 {
		return 1
	}
	return 0
}

func winsorized(vals []float64) []float64 {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	out := append([]float64(nil), vals...)
	if len(finite) < 3 {
		return out
	}
	sort.Float64s(finite)
	lo := mathx.Quantile(finite, 0.01)
	hi := mathx.Quantile(finite, 0.99)
	for i, v := range out {
		if !math.IsNaN(v) {
			out[i] = mathx.Clamp(v, lo, hi)
		}
	}
	return out
}

func fillNaN(vals []float64, fill float64) []float64 {
	out := append([]float64(nil), vals...)
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = fill
		}
	}
	return out
}

// backfilled replaces the leading NaN run with the first defined value.
func backfilled(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	first := math.NaN()
	for _, v := range out {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = first
		} else {
			break
		}
	}
	return out
}

func tail(vals []float64, n int) []float64 {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}
