// Package schedule plans an entry and exit over a forecast horizon. An
// autoregressive price path with confidence bands drives buy/sell point
// detection and a day-by-day profit schedule.
package schedule

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

// DefaultConfidenceLevel sizes the forecast bands.
const DefaultConfidenceLevel = 0.95

// Build computes the full trading schedule for a symbol. The series must be
// non-empty; horizonDays and confidenceLevel fall back to sane values when
// out of range.
func Build(ctx context.Context, symbol string, series types.PriceSeries, horizonDays int, confidenceLevel float64) (*types.TradeSchedule, error) {
	if len(series) == 0 {
		return nil, &types.InsufficientDataError{Need: 1, Have: 0}
	}
	if horizonDays <= 0 {
		horizonDays = 30
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = DefaultConfidenceLevel
	}

	closes := series.Closes()
	fc, fellBack := forecastPath(closes, horizonDays, zScore(confidenceLevel))
	if fellBack {
		logger.Warn(ctx, "Autoregressive fit unavailable, scheduling on linear trend",
			"symbol", symbol, "rows", len(closes))
	}

	dates := futureBusinessDays(series[len(series)-1].Date, horizonDays)
	buyIdx, sellIdx := tradingPoints(fc, series.LastClose())

	rows, summary := walkSchedule(fc, dates, buyIdx, sellIdx)
	summary.ConfidenceLevel = types.JSONFloat(confidenceLevel)

	logger.Info(ctx, "Trading schedule built",
		"symbol", symbol, "horizon", horizonDays,
		"buy_date", summary.BuyDate.Format("2006-01-02"),
		"sell_date", summary.SellDate.Format("2006-01-02"),
		"expected_profit_pct", float64(summary.ExpectedProfit))

	return &types.TradeSchedule{
		Symbol:       symbol,
		Rows:         rows,
		Summary:      summary,
		FallbackUsed: fellBack,
	}, nil
}

// tradingPoints scans interior forecast days for a local minimum dipping
// below its lower bound (buy) and a local maximum above its upper bound
// (sell), keeping the most extreme of each. When neither qualifies, trend
// direction places the trade at the horizon edges: uptrend buys first and
// sells last, downtrend inverts.
func tradingPoints(fc pathForecast, currentPrice float64) (buyIdx, sellIdx int) {
	buyIdx, sellIdx = -1, -1
	buyPrice, sellPrice := math.Inf(1), math.Inf(-1)
	for i := 1; i < len(fc.prices)-1; i++ {
		p := fc.prices[i]
		if p < fc.lower[i] && fc.prices[i-1] > p && p < fc.prices[i+1] && p < buyPrice {
			buyPrice, buyIdx = p, i
		}
		if p > fc.upper[i] && fc.prices[i-1] < p && p > fc.prices[i+1] && p > sellPrice {
			sellPrice, sellIdx = p, i
		}
	}
	if buyIdx >= 0 && sellIdx >= 0 {
		return buyIdx, sellIdx
	}

	last := len(fc.prices) - 1
	if fc.prices[last] > currentPrice {
		return 0, last
	}
	return last, 0
}

// walkSchedule steps through the horizon, opening the position on the buy
// day, tracking running and extreme profit against the band while open, and
// closing on the sell day.
func walkSchedule(fc pathForecast, dates []time.Time, buyIdx, sellIdx int) ([]types.ScheduleRow, types.ScheduleSummary) {
	entryPrice := fc.prices[buyIdx]
	exitPrice := fc.prices[sellIdx]

	rows := make([]types.ScheduleRow, 0, len(dates))
	open := false
	maxProfit, maxLoss := 0.0, 0.0

	for i, date := range dates {
		action := "HOLD"
		profitLoss := 0.0

		switch {
		case i == buyIdx && !open:
			action = "BUY"
			open = true
		case i == sellIdx && open:
			action = "SELL"
			profitLoss = (exitPrice - entryPrice) / entryPrice * 100
			open = false
		case open:
			profitLoss = (fc.prices[i] - entryPrice) / entryPrice * 100
			maxProfit = math.Max(maxProfit, (fc.upper[i]-entryPrice)/entryPrice*100)
			maxLoss = math.Min(maxLoss, (fc.lower[i]-entryPrice)/entryPrice*100)
		}

		position := "Closed"
		if open {
			position = "Open"
		}
		rows = append(rows, types.ScheduleRow{
			Date:          date,
			ForecastPrice: roundPrice(fc.prices[i]),
			LowerBound:    roundPrice(fc.lower[i]),
			UpperBound:    roundPrice(fc.upper[i]),
			Action:        action,
			ProfitLossPct: roundPct(profitLoss),
			Position:      position,
		})
	}

	summary := types.ScheduleSummary{
		BuyDate:        dates[buyIdx],
		BuyPrice:       roundPrice(entryPrice),
		SellDate:       dates[sellIdx],
		SellPrice:      roundPrice(exitPrice),
		ExpectedProfit: roundPct((exitPrice - entryPrice) / entryPrice * 100),
		MaxProfit:      roundPct(maxProfit),
		MaxLoss:        roundPct(maxLoss),
	}
	return rows, summary
}

// Suggestion renders the schedule summary as a short human-readable note.
func Suggestion(ts *types.TradeSchedule) string {
	s := ts.Summary
	return fmt.Sprintf(
		"Trading Suggestion for %s:\n"+
			"- Buy at $%.2f on %s\n"+
			"- Sell at $%.2f on %s\n"+
			"- Expected Profit: %.2f%% (Max Profit: %.2f%%, Max Loss: %.2f%%)",
		ts.Symbol,
		float64(s.BuyPrice), s.BuyDate.Format("2006-01-02"),
		float64(s.SellPrice), s.SellDate.Format("2006-01-02"),
		float64(s.ExpectedProfit), float64(s.MaxProfit), float64(s.MaxLoss))
}

// Prices and percentages round at emission only; all detection arithmetic
// runs on the unrounded path.
func roundPrice(v float64) types.JSONFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return types.JSONFloat(v)
	}
	return types.JSONFloat(decimal.NewFromFloat(v).Round(2).InexactFloat64())
}

func roundPct(v float64) types.JSONFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return types.JSONFloat(v)
	}
	return types.JSONFloat(decimal.NewFromFloat(v).Round(4).InexactFloat64())
}

func futureBusinessDays(last time.Time, n int) []time.Time {
	if last.IsZero() {
		last = time.Now()
	}
	out := make([]time.Time, 0, n)
	d := last
	for len(out) < n {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// zScore is the standard normal quantile at (1+level)/2, using Acklam's
// rational approximation.
func zScore(level float64) float64 {
	p := (1 + level) / 2

	a := [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const pHigh = 1 - 0.02425
	if p > pHigh {
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}

	q := p - 0.5
	r := q * q
	return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
		(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
}
