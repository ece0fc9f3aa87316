package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"stock-advisor/internal/news"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

type fakePrices struct {
	series types.PriceSeries
	err    error
}

func (f *fakePrices) HistoricalSeries(ctx context.Context, symbol string, days int) (types.PriceSeries, error) {
	return f.series, f.err
}

func (f *fakePrices) Snapshot(ctx context.Context, symbol string) (float64, error) {
	return f.series.LastClose(), f.err
}

type fakeHeadlines struct{ headlines []types.Headline }

func (f *fakeHeadlines) Headlines(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	return f.headlines, nil
}

type recordingListener struct {
	ensembles  int
	forecasts  int
	sentiments int
	decisions  []types.Decision
}

func (l *recordingListener) OnEnsemble(symbol string, result *types.EnsembleResult) { l.ensembles++ }
func (l *recordingListener) OnForecast(symbol string, fc *types.SeasonalForecast)  { l.forecasts++ }
func (l *recordingListener) OnSentiment(symbol string, records []types.SentimentRecord) {
	l.sentiments++
}
func (l *recordingListener) OnDecision(symbol string, d types.Decision) {
	l.decisions = append(l.decisions, d)
}

func testConfig() *store.Config {
	cfg := &store.Config{
		Symbols:      []string{"AAPL"},
		HistoryDays:  365,
		PriceDataDir: "unused",
	}
	cfg.Ensemble.Window = 10
	cfg.Ensemble.Profile = "Balanced"
	cfg.Forecast.HorizonDays = 30
	cfg.Schedule.HorizonDays = 30
	cfg.Schedule.ConfidenceLevel = 0.95
	return cfg
}

func TestRecommendEndToEnd(t *testing.T) {
	prices := &fakePrices{series: syntheticSeries(320)}
	headlines := &fakeHeadlines{headlines: []types.Headline{
		{Title: "Stock climbed on strong earnings"},
	}}
	newsCfg := news.DefaultServiceConfig()
	newsSvc := news.NewService(headlines, newsCfg)
	listener := &recordingListener{}

	pipe, err := New(testConfig(), prices, newsSvc, listener)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rec, err := pipe.Recommend(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if rec.Decision.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", rec.Decision.Symbol)
	}
	if rec.Decision.Action == "" {
		t.Error("Expected a decision action")
	}
	if rec.Ensemble == nil {
		t.Error("Expected an ensemble section for a 320-day series")
	}
	if rec.Forecast == nil || len(rec.Forecast.Points) != 30 {
		t.Error("Expected a 30-day forecast section")
	}
	if len(rec.Sentiment) != 1 {
		t.Errorf("Expected 1 sentiment record, got %d", len(rec.Sentiment))
	}
	if rec.Schedule == nil || len(rec.Schedule.Rows) != 30 {
		t.Error("Expected a 30-day trade schedule")
	}
	if rec.Trade == nil {
		t.Error("Expected a paper trade sketch")
	} else if float64(rec.Trade.EntryPrice) != prices.series.LastClose() {
		t.Errorf("Expected entry at the last close, got %f", float64(rec.Trade.EntryPrice))
	}

	if listener.ensembles != 1 || listener.forecasts != 1 || listener.sentiments != 1 {
		t.Errorf("Expected each stage observed once, got %d/%d/%d",
			listener.ensembles, listener.forecasts, listener.sentiments)
	}
	if len(listener.decisions) != 1 {
		t.Fatalf("Expected 1 decision, got %d", len(listener.decisions))
	}
	if listener.decisions[0].ID != rec.Decision.ID {
		t.Error("Expected the listener to observe the returned decision")
	}
}

func TestRecommendShortSeriesDegrades(t *testing.T) {
	// 60 rows: too short for the feature windows, long enough for the
	// technical snapshot and fallback forecast.
	prices := &fakePrices{series: syntheticSeries(60)}
	pipe, err := New(testConfig(), prices, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rec, err := pipe.Recommend(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if rec.Ensemble != nil {
		t.Error("Expected no ensemble section for a short series")
	}
	if rec.Forecast == nil {
		t.Error("Expected a forecast section even when degraded")
	}
	if rec.Sentiment != nil {
		t.Error("Expected no sentiment without a news service")
	}
	if rec.Decision.Action == "" {
		t.Error("Expected a decision regardless of degraded stages")
	}
}

func TestRecommendPriceFetchError(t *testing.T) {
	prices := &fakePrices{err: errors.New("file not found")}
	pipe, err := New(testConfig(), prices, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := pipe.Recommend(context.Background(), "AAPL"); err == nil {
		t.Error("Expected error when price history is unavailable")
	}
}

func TestNewUnknownProfile(t *testing.T) {
	cfg := testConfig()
	cfg.Ensemble.Profile = "NoSuchProfile"
	if _, err := New(cfg, &fakePrices{}, nil, nil); err == nil {
		t.Error("Expected error for unknown weight profile")
	}
}

func TestNewCustomWeights(t *testing.T) {
	cfg := testConfig()
	cfg.Ensemble.Profile = ""
	cfg.Ensemble.Weights = map[string]float64{"SequenceModel": 0.7, "XGBoostEnsemble": 0.3}
	pipe, err := New(cfg, &fakePrices{}, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if len(pipe.weights) != 2 {
		t.Errorf("Expected 2 custom weights, got %d", len(pipe.weights))
	}
}

func syntheticSeries(n int) types.PriceSeries {
	series := make(types.PriceSeries, 0, n)
	date := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, 1)
		}
		base := 120 + 0.09*float64(i) + 4*math.Sin(float64(i)/10)
		series = append(series, types.Candle{
			Date:  date,
			Open:  base - 0.3,
			High:  base + 1.3,
			Low:   base - 1.3,
			Close: base,
			Vol:   1.8e6 + 2.5e4*float64(i%23),
		})
		date = date.AddDate(0, 0, 1)
	}
	return series
}
