package schedule

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

func TestBuildEmptySeries(t *testing.T) {
	_, err := Build(context.Background(), "AAPL", nil, 30, 0.95)
	if err == nil {
		t.Fatal("Expected error for empty series")
	}
}

func TestBuildUptrend(t *testing.T) {
	series := trendingSeries(120, 100, 0.5)
	ts, err := Build(context.Background(), "AAPL", series, 20, 0.95)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ts.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", ts.Symbol)
	}
	if len(ts.Rows) != 20 {
		t.Fatalf("Expected 20 schedule rows, got %d", len(ts.Rows))
	}

	lastDate := series[len(series)-1].Date
	for i, row := range ts.Rows {
		if !row.Date.After(lastDate) {
			t.Errorf("Row %d dated %v not after history end", i, row.Date)
		}
		lastDate = row.Date
		if wd := row.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("Row %d falls on a weekend: %v", i, row.Date)
		}
		if float64(row.LowerBound) > float64(row.ForecastPrice) ||
			float64(row.ForecastPrice) > float64(row.UpperBound) {
			t.Errorf("Row %d bounds out of order", i)
		}
	}

	// A rising path schedules entry at the start and exit at the end.
	if ts.Rows[0].Action != "BUY" {
		t.Errorf("Expected BUY on the first day, got %s", ts.Rows[0].Action)
	}
	last := len(ts.Rows) - 1
	if ts.Rows[last].Action != "SELL" {
		t.Errorf("Expected SELL on the last day, got %s", ts.Rows[last].Action)
	}
	if ts.Rows[last].Position != "Closed" {
		t.Errorf("Expected position closed after the sell, got %s", ts.Rows[last].Position)
	}
	for i := 0; i < last; i++ {
		if ts.Rows[i].Position != "Open" {
			t.Errorf("Expected position open on day %d, got %s", i, ts.Rows[i].Position)
		}
	}

	s := ts.Summary
	if float64(s.ExpectedProfit) <= 0 {
		t.Errorf("Expected positive profit on a rising path, got %f", float64(s.ExpectedProfit))
	}
	if !s.BuyDate.Equal(ts.Rows[0].Date) || !s.SellDate.Equal(ts.Rows[last].Date) {
		t.Error("Expected summary dates to match the scheduled rows")
	}
	if float64(s.MaxLoss) > 0 {
		t.Errorf("Expected non-positive max loss, got %f", float64(s.MaxLoss))
	}
	if float64(s.ConfidenceLevel) != 0.95 {
		t.Errorf("Expected confidence level 0.95, got %f", float64(s.ConfidenceLevel))
	}
}

func TestBuildDowntrend(t *testing.T) {
	series := trendingSeries(120, 200, -0.5)
	ts, err := Build(context.Background(), "MSFT", series, 15, 0.95)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// A falling path inverts the edges: the entry lands on the last day.
	if !ts.Summary.BuyDate.After(ts.Summary.SellDate) {
		t.Errorf("Expected buy date after sell date on a falling path, got %v and %v",
			ts.Summary.BuyDate, ts.Summary.SellDate)
	}
}

func TestBuildShortSeriesFallsBack(t *testing.T) {
	series := trendingSeries(8, 100, 1)
	ts, err := Build(context.Background(), "AAPL", series, 10, 0.95)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !ts.FallbackUsed {
		t.Error("Expected linear-trend fallback below the history minimum")
	}
	if len(ts.Rows) != 10 {
		t.Errorf("Expected 10 rows, got %d", len(ts.Rows))
	}
}

func TestBuildDefaultsOutOfRangeInputs(t *testing.T) {
	series := trendingSeries(60, 100, 0.3)
	ts, err := Build(context.Background(), "AAPL", series, 0, 2.5)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(ts.Rows) != 30 {
		t.Errorf("Expected default 30-day horizon, got %d rows", len(ts.Rows))
	}
	if float64(ts.Summary.ConfidenceLevel) != DefaultConfidenceLevel {
		t.Errorf("Expected default confidence level, got %f", float64(ts.Summary.ConfidenceLevel))
	}
}

func TestZScore(t *testing.T) {
	cases := []struct {
		level, want float64
	}{
		{0.95, 1.959964},
		{0.90, 1.644854},
		{0.99, 2.575829},
	}
	for _, c := range cases {
		if got := zScore(c.level); math.Abs(got-c.want) > 1e-4 {
			t.Errorf("zScore(%f) = %f, want %f", c.level, got, c.want)
		}
	}
}

func TestFutureBusinessDays(t *testing.T) {
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	days := futureBusinessDays(friday, 5)
	if len(days) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(days))
	}
	if days[0].Weekday() != time.Monday {
		t.Errorf("Expected Monday after Friday, got %v", days[0].Weekday())
	}
	for _, d := range days {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("Got weekend day %v", d)
		}
	}
}

func TestRounding(t *testing.T) {
	if got := float64(roundPrice(123.456)); got != 123.46 {
		t.Errorf("Expected 123.46, got %f", got)
	}
	if got := float64(roundPct(1.23456)); got != 1.2346 {
		t.Errorf("Expected 1.2346, got %f", got)
	}
	if got := float64(roundPrice(math.NaN())); !math.IsNaN(got) {
		t.Errorf("Expected NaN passthrough, got %f", got)
	}
}

func TestSuggestion(t *testing.T) {
	series := trendingSeries(120, 100, 0.5)
	ts, err := Build(context.Background(), "AAPL", series, 20, 0.95)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	text := Suggestion(ts)
	for _, want := range []string{"AAPL", "Buy at", "Sell at", "Expected Profit"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected suggestion to contain %q, got %q", want, text)
		}
	}
}

func trendingSeries(n int, start, drift float64) types.PriceSeries {
	series := make(types.PriceSeries, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		price := start + drift*float64(i) + 0.8*math.Sin(float64(i)/5)
		series = append(series, types.Candle{
			Date: date, Open: price, High: price + 1, Low: price - 1, Close: price, Vol: 1e6,
		})
		date = date.AddDate(0, 0, 1)
	}
	return series
}
