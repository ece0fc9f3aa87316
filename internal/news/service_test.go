package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

type fakeProvider struct {
	headlines []types.Headline
	err       error
	calls     int
}

func (f *fakeProvider) Headlines(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.headlines, nil
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxHeadlines != 15 {
		t.Errorf("Expected MaxHeadlines to be 15, got %d", cfg.MaxHeadlines)
	}
	if cfg.CacheDuration != 1*time.Hour {
		t.Errorf("Expected CacheDuration to be 1 hour, got %v", cfg.CacheDuration)
	}
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestNewServiceScraperTimeout(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.ScraperTimeout = 7 * time.Second
	svc := NewService(nil, cfg)
	sc, ok := svc.provider.(*Scraper)
	if !ok {
		t.Fatalf("Expected default provider to be a Scraper, got %T", svc.provider)
	}
	if sc.timeout != 7*time.Second {
		t.Errorf("Expected configured timeout to reach the scraper, got %v", sc.timeout)
	}
}

func TestNewService(t *testing.T) {
	svc := NewService(nil, nil)
	if svc == nil {
		t.Fatal("Expected service to be created")
	}
	if svc.provider == nil {
		t.Error("Expected a default provider")
	}
	if svc.scorer == nil {
		t.Error("Expected scorer to be initialized")
	}
	if svc.cache == nil {
		t.Error("Expected cache to be initialized")
	}
}

func TestScoredHeadlines(t *testing.T) {
	provider := &fakeProvider{headlines: []types.Headline{
		{Title: "Stock surged on strong earnings"},
		{Title: "Shares fell after weak guidance"},
	}}
	svc := NewService(provider, DefaultServiceConfig())

	records := svc.ScoredHeadlines(context.Background(), "AAPL")
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if float64(records[0].Score) <= 0 {
		t.Errorf("Expected positive score for bullish headline, got %f", float64(records[0].Score))
	}
	if float64(records[1].Score) >= 0 {
		t.Errorf("Expected negative score for bearish headline, got %f", float64(records[1].Score))
	}
}

func TestScoredHeadlinesCached(t *testing.T) {
	provider := &fakeProvider{headlines: []types.Headline{{Title: "Profit climbed"}}}
	svc := NewService(provider, DefaultServiceConfig())

	svc.ScoredHeadlines(context.Background(), "AAPL")
	svc.ScoredHeadlines(context.Background(), "AAPL")

	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call with a warm cache, got %d", provider.calls)
	}

	hits, misses := svc.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
}

func TestScoredHeadlinesDisabled(t *testing.T) {
	provider := &fakeProvider{headlines: []types.Headline{{Title: "anything"}}}
	cfg := DefaultServiceConfig()
	cfg.Enabled = false
	svc := NewService(provider, cfg)

	records := svc.ScoredHeadlines(context.Background(), "AAPL")
	if records != nil {
		t.Errorf("Expected nil records when disabled, got %d", len(records))
	}
	if provider.calls != 0 {
		t.Errorf("Expected no provider calls when disabled, got %d", provider.calls)
	}
}

func TestScoredHeadlinesFetchFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc := NewService(provider, DefaultServiceConfig())

	records := svc.ScoredHeadlines(context.Background(), "AAPL")
	if records != nil {
		t.Errorf("Expected nil records on fetch failure, got %d", len(records))
	}
}
