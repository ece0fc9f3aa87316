package features

import (
	"math"
	"sort"

	"stock-advisor/internal/mathx"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// CloseColumn is the position of the closing price in every feature row.
// Ensemble inverse-scaling reads predictions back through this column.
const CloseColumn = 0

// Matrix is the cleaned, scaled feature matrix plus the fitted scaler.
// Rows with an unsatisfied trailing window are dropped, never invented.
type Matrix struct {
	Columns []string
	Rows    [][]float64
	Scaler  *MinMaxScaler
}

// NumRows returns the usable row count after cleaning.
func (m *Matrix) NumRows() int { return len(m.Rows) }

// Build derives the feature matrix from a price series and its indicator
// columns. Fails with FeatureExtractionError when no row survives cleaning.
func Build(series types.PriceSeries, col *ta.Columns) (*Matrix, error) {
	n := len(series)
	if n == 0 {
		return nil, &types.FeatureExtractionError{Reason: "empty price series"}
	}

	momentum := ta.PctChangeSeries(col.Close, 5)
	rsiMomentum := ta.DiffSeries(col.RSI, 3)
	macdSignal := ta.EMASeries(col.MACD, 9)
	dailyRet := ta.PctChangeSeries(col.Close, 1)
	vol20 := ta.RollingStdSeries(dailyRet, 20)

	names := []string{
		"Close", "MA5", "MA20", "MA50", "MA200", "RSI", "MACD",
		"ROC", "ATR", "BB_upper", "BB_lower", "Volume_Rate",
		"EMA12", "EMA26", "MOM", "STOCH_K", "WILLR",
		"Price_Momentum", "MA_Crossover", "RSI_Momentum",
		"MACD_Signal", "Volume_Shock", "ADX", "Is_Trending",
		"Volatility_20d", "Day_0", "Day_1", "Day_2", "Day_3", "Day_4",
	}

	raw := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		crossover := 0.0
		if col.MA5[i] > col.MA20[i] {
			crossover = 1.0
		}
		trending := 0.0
		if col.ADX[i] > 25 {
			trending = 1.0
		}
		volShock := math.NaN()
		if i > 0 && col.Volume[i-1] != 0 {
			volShock = mathx.Clamp((col.Volume[i]-col.Volume[i-1])/col.Volume[i-1], -1, 1)
		}
		annVol := math.NaN()
		if !math.IsNaN(vol20[i]) {
			annVol = vol20[i] * math.Sqrt(252)
		}
		dow := int(series[i].Date.Weekday()) - 1 // Monday == 0
		days := [5]float64{}
		if dow >= 0 && dow < 5 {
			days[dow] = 1.0
		}
		row := []float64{
			col.Close[i], col.MA5[i], col.MA20[i], col.MA50[i], col.MA200[i],
			col.RSI[i], col.MACD[i], col.ROC[i], col.ATR[i],
			col.BBUpper[i], col.BBLower[i], col.VolumeRate[i],
			col.EMA12[i], col.EMA26[i], col.MOM[i], col.StochK[i], col.WillR[i],
			momentum[i], crossover, rsiMomentum[i],
			col.MACD[i] - macdSignal[i], volShock, col.ADX[i], trending,
			annVol, days[0], days[1], days[2], days[3], days[4],
		}
		raw = append(raw, row)
	}

	winsorize(raw, 0.01, 0.99)

	clean := make([][]float64, 0, len(raw))
	for _, row := range raw {
		ok := true
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				ok = false
				break
			}
		}
		if ok {
			clean = append(clean, row)
		}
	}
	if len(clean) == 0 {
		return nil, &types.FeatureExtractionError{Reason: "no rows survived cleaning"}
	}

	scaler := &MinMaxScaler{}
	scaler.Fit(clean)
	return &Matrix{
		Columns: names,
		Rows:    scaler.Transform(clean),
		Scaler:  scaler,
	}, nil
}

// winsorize clips each column at the given low/high quantiles in place,
// bounding the influence of outliers on the scaler and on tree splits.
func winsorize(rows [][]float64, lo, hi float64) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	vals := make([]float64, 0, len(rows))
	for j := 0; j < cols; j++ {
		vals = vals[:0]
		for _, r := range rows {
			if !math.IsNaN(r[j]) && !math.IsInf(r[j], 0) {
				vals = append(vals, r[j])
			}
		}
		if len(vals) < 3 {
			continue
		}
		sort.Float64s(vals)
		qlo := mathx.Quantile(vals, lo)
		qhi := mathx.Quantile(vals, hi)
		for _, r := range rows {
			if !math.IsNaN(r[j]) {
				r[j] = mathx.Clamp(r[j], qlo, qhi)
			}
		}
	}
}
