// Package news fetches and scores headlines for a symbol. Scraped items go
// through the sentiment scorer and the scored records are cached for the
// headline freshness window.
package news

import (
	"context"
	"time"

	"stock-advisor/internal/cache"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/telemetry"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// Service provides scored news sentiment with caching
type Service struct {
	provider interfaces.HeadlineProvider
	scorer   *sentiment.Scorer
	cache    *cache.TTL[[]types.SentimentRecord]
	cfg      *ServiceConfig
}

// ServiceConfig configures the news sentiment service
type ServiceConfig struct {
	MaxHeadlines   int           // Maximum headlines to fetch per symbol
	CacheDuration  time.Duration // How long to cache scored records
	ScraperTimeout time.Duration // Timeout for scraping operations
	Enabled        bool          // Whether sentiment analysis is enabled
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   15,
		CacheDuration:  cache.HeadlineTTL,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

// NewService creates a news sentiment service. A nil provider gets the
// default scraper.
func NewService(provider interfaces.HeadlineProvider, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if provider == nil {
		provider = NewScraper(cfg.ScraperTimeout)
	}
	return &Service{
		provider: provider,
		scorer:   sentiment.NewScorer(),
		cache:    cache.New[[]types.SentimentRecord](cfg.CacheDuration),
		cfg:      cfg,
	}
}

// ScoredHeadlines retrieves scored records for a symbol, cached or fresh.
// Fetch failures yield an empty record set rather than an error; a missing
// sentiment signal just drops out of the downstream vote.
func (s *Service) ScoredHeadlines(ctx context.Context, symbol string) []types.SentimentRecord {
	ctx, span := trace.StartSpan(ctx, "scored-headlines")
	defer span.End()

	if !s.cfg.Enabled {
		return nil
	}

	if cached, ok := s.cache.Get(symbol); ok {
		telemetry.RecordCacheHit("headlines")
		logger.Info(ctx, "Using cached sentiment", "symbol", symbol, "records", len(cached))
		return cached
	}
	telemetry.RecordCacheMiss("headlines")

	logger.Info(ctx, "Fetching fresh news sentiment", "symbol", symbol)
	headlines, err := s.provider.Headlines(ctx, symbol, s.cfg.MaxHeadlines)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch headlines", err, "symbol", symbol)
		return nil
	}

	records := s.scorer.ScoreHeadlines(headlines)
	s.cache.Set(symbol, records)
	return records
}

// CacheStats exposes the cache hit/miss counters for telemetry.
func (s *Service) CacheStats() (hits, misses uint64) {
	return s.cache.Stats()
}
