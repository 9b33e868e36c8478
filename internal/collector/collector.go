package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PairSentinel/internal/cache"
	"PairSentinel/internal/model"
)

// MockFetcher returns controllable synthetic data for development and
// testing. Symbols present in Fail return their error from every call.
type MockFetcher struct {
	BasePrice   float64
	QuoteVolume float64
	Series      map[string]*model.PriceSeries
	Snapshots   map[string]*model.Snapshot
	Fail        map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	if err := m.Fail[symbol]; err != nil {
		return nil, err
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   generateMockCandles(m.basePrice(), limit),
		FetchedAt: time.Now(),
	}, nil
}

func (m *MockFetcher) FetchSnapshot(_ context.Context, symbol string) (*model.Snapshot, error) {
	if err := m.Fail[symbol]; err != nil {
		return nil, err
	}
	if s, ok := m.Snapshots[symbol]; ok {
		return s, nil
	}
	last := m.basePrice()
	bid := last * 0.9995
	ask := last * 1.0005
	volume := m.QuoteVolume
	if volume == 0 {
		volume = 25000000
	}
	return &model.Snapshot{
		Symbol:        symbol,
		LastPrice:     last,
		Bid:           bid,
		Ask:           ask,
		QuoteVolume:   volume,
		SpreadPercent: SpreadPercent(bid, ask),
		FetchedAt:     time.Now(),
	}, nil
}

func (m *MockFetcher) basePrice() float64 {
	if m.BasePrice > 0 {
		return m.BasePrice
	}
	return 100
}

func generateMockCandles(basePrice float64, count int) []model.Candle {
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Timestamp: time.Now().Add(-time.Duration(count-i) * time.Hour),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return candles
}

// Collector fronts a Fetcher with a cache so that repeated reads within
// one cycle do not hit the exchange twice.
type Collector struct {
	Fetcher     Fetcher
	Cache       cache.Cache
	SeriesTTL   time.Duration
	SnapshotTTL time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, c cache.Cache, seriesTTL, snapshotTTL time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Cache: c, SeriesTTL: seriesTTL, SnapshotTTL: snapshotTTL}
}

// Series returns candles for one symbol and timeframe, cached per
// symbol/timeframe pair.
func (c *Collector) Series(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	key := fmt.Sprintf("series:%s:%s", symbol, timeframe)
	data, err := c.Cache.Get(ctx, key, c.SeriesTTL, func(ctx context.Context) ([]byte, error) {
		series, err := c.Fetcher.FetchSeries(ctx, symbol, timeframe, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(series)
	})
	if err != nil {
		return nil, err
	}
	var series model.PriceSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("decode cached %s series: %w", symbol, err)
	}
	return &series, nil
}

// Snapshot returns the current ticker state for one symbol.
func (c *Collector) Snapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	key := fmt.Sprintf("snapshot:%s", symbol)
	data, err := c.Cache.Get(ctx, key, c.SnapshotTTL, func(ctx context.Context) ([]byte, error) {
		snapshot, err := c.Fetcher.FetchSnapshot(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return json.Marshal(snapshot)
	})
	if err != nil {
		return nil, err
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode cached %s snapshot: %w", symbol, err)
	}
	return &snapshot, nil
}
