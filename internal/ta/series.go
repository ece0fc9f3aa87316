package ta

import "math"

// Series variants compute an indicator column over the whole input. Rows
// before the window is satisfied are NaN and must be dropped by callers.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func SMASeries(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

func EMASeries(vals []float64, span int) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	ema := vals[0]
	out[0] = ema
	for i := 1; i < len(vals); i++ {
		ema = alpha*vals[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// RSISeries uses the mean of positive and negative deltas over the window.
// A zero loss mean defines RSI as 100 rather than dividing by zero.
func RSISeries(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	for i := period; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - closes[j-1]
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
		}
		if loss == 0 {
			out[i] = 100.0
			continue
		}
		rs := (gain / float64(period)) / (loss / float64(period))
		out[i] = 100.0 - (100.0 / (1.0 + rs))
	}
	return out
}

func MACDSeries(closes []float64, fast, slow int) []float64 {
	f := EMASeries(closes, fast)
	s := EMASeries(closes, slow)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = f[i] - s[i]
	}
	return out
}

// ROCSeries is the n-period percentage rate of change, scaled to percent.
func ROCSeries(closes []float64, n int) []float64 {
	out := nanSlice(len(closes))
	for i := n; i < len(closes); i++ {
		if closes[i-n] != 0 {
			out[i] = (closes[i] - closes[i-n]) / closes[i-n] * 100.0
		}
	}
	return out
}

// PctChangeSeries is the n-period fractional change.
func PctChangeSeries(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	for i := n; i < len(vals); i++ {
		if vals[i-n] != 0 {
			out[i] = (vals[i] - vals[i-n]) / vals[i-n]
		}
	}
	return out
}

// DiffSeries is the n-period absolute difference (momentum).
func DiffSeries(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	for i := n; i < len(vals); i++ {
		out[i] = vals[i] - vals[i-n]
	}
	return out
}

func RollingStdSeries(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 1 || len(vals) < n {
		return out
	}
	for i := n - 1; i < len(vals); i++ {
		m := 0.0
		for j := i - n + 1; j <= i; j++ {
			m += vals[j]
		}
		m /= float64(n)
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := vals[j] - m
			s += d * d
		}
		out[i] = math.Sqrt(s / float64(n))
	}
	return out
}

func ATRSeries(highs, lows, closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(highs) != len(lows) || len(lows) != len(closes) || len(closes) < period+1 {
		return out
	}
	trs := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		tr1 := highs[i] - lows[i]
		tr2 := math.Abs(highs[i] - closes[i-1])
		tr3 := math.Abs(lows[i] - closes[i-1])
		trs[i] = math.Max(tr1, math.Max(tr2, tr3))
	}
	for i := period; i < len(closes); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += trs[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

func BollingerSeries(closes []float64, n int, k float64) (upper, lower []float64) {
	ma := SMASeries(closes, n)
	sd := RollingStdSeries(closes, n)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(ma[i]) && !math.IsNaN(sd[i]) {
			upper[i] = ma[i] + k*sd[i]
			lower[i] = ma[i] - k*sd[i]
		}
	}
	return
}

func StochasticKSeries(highs, lows, closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			out[i] = 50.0
			continue
		}
		out[i] = 100.0 * (closes[i] - lo) / (hi - lo)
	}
	return out
}

func WilliamsRSeries(highs, lows, closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		if hi == lo {
			out[i] = -50.0
			continue
		}
		out[i] = -100.0 * (hi - closes[i]) / (hi - lo)
	}
	return out
}

// ADXSeries measures trend strength. Degenerate input never errors; the
// contract is an all-zero column as the safe fallback.
func ADXSeries(highs, lows, closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(highs) != len(lows) || len(lows) != len(closes) || len(closes) < 2*period+1 {
		return out
	}
	n := len(closes)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > 0 && up > down {
			plusDM[i] = up
		}
		if down > 0 && down > up {
			minusDM[i] = down
		}
	}
	dx := make([]float64, n)
	for i := period; i < n; i++ {
		var atr, pdm, mdm float64
		for j := i - period + 1; j <= i; j++ {
			atr += tr[j]
			pdm += plusDM[j]
			mdm += minusDM[j]
		}
		atr /= float64(period)
		if atr == 0 {
			continue
		}
		plusDI := 100.0 * pdm / float64(period) / atr
		minusDI := 100.0 * mdm / float64(period) / atr
		if plusDI+minusDI == 0 {
			continue
		}
		dx[i] = 100.0 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}
	for i := 2 * period; i < n; i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += dx[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
