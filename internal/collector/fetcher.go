package collector

import (
	"context"
	"errors"

	"PairSentinel/internal/model"
)

// ErrNoData marks an empty provider response for a symbol the
// exchange does not serve.
var ErrNoData = errors.New("no market data for symbol")

// Fetcher defines the interface for fetching market data. Symbols are
// base assets ("ETH"); implementations compose the exchange pair.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error)
	FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error)
	Name() string
}
