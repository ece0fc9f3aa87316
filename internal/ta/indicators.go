package ta

import (
	"math"

	"stock-advisor/internal/types"
)

// Columns holds the indicator columns computed over a whole price series,
// aligned row-for-row with the input. Rows before the longest satisfied
// window are NaN and must be dropped before use.
type Columns struct {
	Close, High, Low, Volume []float64

	MA5, MA20, MA50, MA200 []float64
	EMA12, EMA26           []float64
	RSI                    []float64
	MACD                   []float64
	ROC                    []float64
	ATR                    []float64
	BBUpper, BBLower       []float64
	VolumeMA, VolumeRate   []float64
	MOM                    []float64
	StochK, WillR          []float64
	ADX                    []float64
}

// Compute augments a price series with the full indicator panel. Pure
// function, no hidden state.
func Compute(series types.PriceSeries) *Columns {
	n := len(series)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range series {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		vols[i] = c.Vol
	}

	col := &Columns{
		Close:  closes,
		High:   highs,
		Low:    lows,
		Volume: vols,

		MA5:    SMASeries(closes, 5),
		MA20:   SMASeries(closes, 20),
		MA50:   SMASeries(closes, 50),
		MA200:  SMASeries(closes, 200),
		EMA12:  EMASeries(closes, 12),
		EMA26:  EMASeries(closes, 26),
		RSI:    RSISeries(closes, 14),
		MACD:   MACDSeries(closes, 12, 26),
		ROC:    ROCSeries(closes, 10),
		ATR:    ATRSeries(highs, lows, closes, 14),
		MOM:    DiffSeries(closes, 10),
		StochK: StochasticKSeries(highs, lows, closes, 14),
		WillR:  WilliamsRSeries(highs, lows, closes, 14),
		ADX:    ADXSeries(highs, lows, closes, 14),
	}
	col.BBUpper, col.BBLower = BollingerSeries(closes, 20, 2.0)
	col.VolumeMA = SMASeries(vols, 20)
	col.VolumeRate = make([]float64, n)
	for i := range vols {
		if !math.IsNaN(col.VolumeMA[i]) && col.VolumeMA[i] != 0 {
			col.VolumeRate[i] = vols[i] / col.VolumeMA[i]
		} else {
			col.VolumeRate[i] = math.NaN()
		}
	}
	return col
}

// Snapshot holds the last-row technical view the governing model consumes.
type Snapshot struct {
	MA20, MA50 float64
	RSI        float64
}

// LatestSnapshot computes the trailing technical summary for a series, or
// reports false when the series is too short for the 50-day window.
func LatestSnapshot(series types.PriceSeries) (Snapshot, bool) {
	closes := series.Closes()
	snap := Snapshot{
		MA20: SMA(closes, 20),
		MA50: SMA(closes, 50),
		RSI:  RSI(closes, 14),
	}
	if math.IsNaN(snap.MA20) || math.IsNaN(snap.MA50) || math.IsNaN(snap.RSI) {
		return Snapshot{}, false
	}
	return snap, true
}
