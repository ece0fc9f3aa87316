// Package marketdata supplies OHLCV history from local CSV files, one file
// per symbol, with freshness-windowed caching in front of the disk reads.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stock-advisor/internal/cache"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/telemetry"
	"stock-advisor/internal/types"
)

// CSVProvider reads <dir>/<SYMBOL>.csv files with a
// Date,Open,High,Low,Close,Volume header. Implements
// interfaces.PriceProvider.
type CSVProvider struct {
	dir      string
	series   *cache.TTL[types.PriceSeries]
	snapshot *cache.TTL[float64]
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{
		dir:      dir,
		series:   cache.New[types.PriceSeries](cache.SeriesTTL),
		snapshot: cache.New[float64](cache.SnapshotTTL),
	}
}

// HistoricalSeries returns up to days most recent candles for a symbol.
func (p *CSVProvider) HistoricalSeries(ctx context.Context, symbol string, days int) (types.PriceSeries, error) {
	key := fmt.Sprintf("%s:%d", symbol, days)
	if cached, ok := p.series.Get(key); ok {
		telemetry.RecordCacheHit("series")
		return cached, nil
	}
	telemetry.RecordCacheMiss("series")

	series, err := p.load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}

	p.series.Set(key, series)
	return series, nil
}

// Snapshot returns the latest close for a symbol.
func (p *CSVProvider) Snapshot(ctx context.Context, symbol string) (float64, error) {
	if cached, ok := p.snapshot.Get(symbol); ok {
		telemetry.RecordCacheHit("snapshot")
		return cached, nil
	}
	telemetry.RecordCacheMiss("snapshot")

	series, err := p.load(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 {
		return 0, &types.InsufficientDataError{Need: 1, Have: 0}
	}

	price := series.LastClose()
	p.snapshot.Set(symbol, price)
	return price, nil
}

func (p *CSVProvider) load(ctx context.Context, symbol string) (types.PriceSeries, error) {
	path := filepath.Join(p.dir, strings.ToUpper(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price file %s: %w", path, err)
	}
	// Skip the first row only when it is an actual header.
	start := 0
	if len(rows) > 0 {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(rows[0][0])); err != nil {
			start = 1
		}
	}
	if len(rows)-start < 1 {
		return nil, &types.InsufficientDataError{Need: start + 1, Have: len(rows)}
	}

	series := make(types.PriceSeries, 0, len(rows)-start)
	for i, row := range rows[start:] {
		candle, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+start+1, path, err)
		}
		series = append(series, candle)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "Loaded price series", "symbol", symbol, "rows", len(series))
	return series, nil
}

func parseCandle(row []string) (types.Candle, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
	if err != nil {
		return types.Candle{}, fmt.Errorf("bad date %q: %w", row[0], err)
	}
	vals := make([]float64, 5)
	for i := 1; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return types.Candle{}, fmt.Errorf("bad number %q: %w", row[i], err)
		}
		vals[i-1] = v
	}
	return types.Candle{
		Date:  date,
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
		Vol:   vals[4],
	}, nil
}
