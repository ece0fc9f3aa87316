package ta

import (
	"math"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	if got := SMA(closes, 5); got != 3 {
		t.Errorf("Expected 3, got %f", got)
	}
	if got := SMA(closes, 2); got != 4.5 {
		t.Errorf("Expected 4.5, got %f", got)
	}
	if got := SMA(closes, 10); !math.IsNaN(got) {
		t.Errorf("Expected NaN for short input, got %f", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("Expected 100 for all gains, got %f", got)
	}
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{10, 11, 10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16}
	got := RSI(closes, 14)
	if got <= 0 || got >= 100 {
		t.Errorf("Expected RSI in (0,100), got %f", got)
	}
}

func TestSMASeriesNaNPrefix(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	out := SMASeries(vals, 3)
	if len(out) != len(vals) {
		t.Fatalf("Expected output length %d, got %d", len(vals), len(out))
	}
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("Expected NaN before window is satisfied")
	}
	if out[2] != 2 || out[4] != 4 {
		t.Errorf("Expected [2 4] at positions 2 and 4, got [%f %f]", out[2], out[4])
	}
}

func TestPctChangeSeries(t *testing.T) {
	vals := []float64{100, 110, 121}
	out := PctChangeSeries(vals, 1)
	if !math.IsNaN(out[0]) {
		t.Error("Expected NaN at first position")
	}
	if math.Abs(out[1]-0.1) > 1e-9 || math.Abs(out[2]-0.1) > 1e-9 {
		t.Errorf("Expected 10%% changes, got [%f %f]", out[1], out[2])
	}
}

func TestRollingStdSeriesConstant(t *testing.T) {
	vals := []float64{5, 5, 5, 5, 5, 5}
	out := RollingStdSeries(vals, 3)
	for i := 2; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("Expected zero std for constant input at %d, got %f", i, out[i])
		}
	}
}

func TestComputeColumnLengths(t *testing.T) {
	series := syntheticSeries(260)
	cols := Compute(series)

	n := len(series)
	for name, col := range map[string][]float64{
		"Close": cols.Close, "MA5": cols.MA5, "MA200": cols.MA200,
		"RSI": cols.RSI, "MACD": cols.MACD, "ADX": cols.ADX,
		"StochK": cols.StochK, "WillR": cols.WillR,
	} {
		if len(col) != n {
			t.Errorf("Column %s has length %d, want %d", name, len(col), n)
		}
	}
	// MA200 defined at the tail for a 260-row series
	if math.IsNaN(cols.MA200[n-1]) {
		t.Error("Expected MA200 to be defined at the last row")
	}
}

func TestLatestSnapshot(t *testing.T) {
	series := syntheticSeries(120)
	snap, ok := LatestSnapshot(series)
	if !ok {
		t.Fatal("Expected snapshot for 120-row series")
	}
	if snap.RSI < 0 || snap.RSI > 100 {
		t.Errorf("Expected RSI in [0,100], got %f", snap.RSI)
	}
	if snap.MA20 <= 0 || snap.MA50 <= 0 {
		t.Errorf("Expected positive moving averages, got %f and %f", snap.MA20, snap.MA50)
	}

	if _, ok := LatestSnapshot(syntheticSeries(10)); ok {
		t.Error("Expected no snapshot for a 10-row series")
	}
}

func TestBollingerSeriesOrdering(t *testing.T) {
	closes := syntheticSeries(80).Closes()
	upper, lower := BollingerSeries(closes, 20, 2.0)
	ma := SMASeries(closes, 20)
	checked := 0
	for i := range closes {
		if math.IsNaN(upper[i]) || math.IsNaN(lower[i]) {
			continue
		}
		checked++
		if upper[i] < ma[i] || ma[i] < lower[i] {
			t.Errorf("Band ordering violated at %d: upper %f ma %f lower %f",
				i, upper[i], ma[i], lower[i])
		}
	}
	if checked == 0 {
		t.Fatal("Expected some defined band values")
	}
}

func TestADXSeriesDegenerateInput(t *testing.T) {
	short := syntheticSeries(10)
	highs := make([]float64, len(short))
	lows := make([]float64, len(short))
	for i, c := range short {
		highs[i] = c.High
		lows[i] = c.Low
	}
	adx := ADXSeries(highs, lows, short.Closes(), 14)
	if len(adx) != 10 {
		t.Fatalf("Expected full-length output, got %d", len(adx))
	}
	for i, v := range adx {
		if v != 0 {
			t.Errorf("Expected all-zero output for short input, got %f at %d", v, i)
		}
	}

	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}
	adx = ADXSeries(flat, flat, flat, 14)
	for i, v := range adx {
		if v != 0 {
			t.Errorf("Expected all-zero output for flat input, got %f at %d", v, i)
		}
	}
}

func syntheticSeries(n int) types.PriceSeries {
	series := make(types.PriceSeries, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		base := 100 + 0.1*float64(i) + 3*math.Sin(float64(i)/7)
		series = append(series, types.Candle{
			Date:  date,
			Open:  base - 0.2,
			High:  base + 1,
			Low:   base - 1,
			Close: base,
			Vol:   1e6 + 1e4*float64(i%17),
		})
		date = date.AddDate(0, 0, 1)
	}
	return series
}
