package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// PriceProvider supplies OHLCV history and spot prices for a symbol.
type PriceProvider interface {
	HistoricalSeries(ctx context.Context, symbol string, days int) (types.PriceSeries, error)
	Snapshot(ctx context.Context, symbol string) (float64, error)
}

// HeadlineProvider supplies recent news items for a symbol.
type HeadlineProvider interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]types.Headline, error)
}
