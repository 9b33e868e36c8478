package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adshao/go-binance"

	"PairSentinel/internal/cache"
	"PairSentinel/internal/model"
)

type countingFetcher struct {
	Fetcher
	seriesCalls   int
	snapshotCalls int
}

func (c *countingFetcher) FetchSeries(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	c.seriesCalls++
	return c.Fetcher.FetchSeries(ctx, symbol, timeframe, limit)
}

func (c *countingFetcher) FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	c.snapshotCalls++
	return c.Fetcher.FetchSnapshot(ctx, symbol)
}

func TestSeries_SecondReadServedFromCache(t *testing.T) {
	fetcher := &countingFetcher{Fetcher: &MockFetcher{BasePrice: 50}}
	c := NewCollector(fetcher, cache.NewMemory(), time.Minute, time.Minute)

	first, err := c.Series(context.Background(), "ETH", "1h", 48)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := c.Series(context.Background(), "ETH", "1h", 48)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if fetcher.seriesCalls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", fetcher.seriesCalls)
	}
	if len(first.Candles) != 48 || len(second.Candles) != 48 {
		t.Errorf("expected 48 candles from both reads, got %d and %d", len(first.Candles), len(second.Candles))
	}
}

func TestSeries_TimeframesCachedSeparately(t *testing.T) {
	fetcher := &countingFetcher{Fetcher: &MockFetcher{}}
	c := NewCollector(fetcher, cache.NewMemory(), time.Minute, time.Minute)

	if _, err := c.Series(context.Background(), "ETH", "1h", 10); err != nil {
		t.Fatalf("1h read: %v", err)
	}
	if _, err := c.Series(context.Background(), "ETH", "4h", 10); err != nil {
		t.Fatalf("4h read: %v", err)
	}
	if fetcher.seriesCalls != 2 {
		t.Errorf("expected 2 upstream fetches for distinct timeframes, got %d", fetcher.seriesCalls)
	}
}

func TestSnapshot_FailureNotCached(t *testing.T) {
	boom := errors.New("exchange down")
	mock := &MockFetcher{Fail: map[string]error{"SOL": boom}}
	fetcher := &countingFetcher{Fetcher: mock}
	c := NewCollector(fetcher, cache.NewMemory(), time.Minute, time.Minute)

	if _, err := c.Snapshot(context.Background(), "SOL"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	delete(mock.Fail, "SOL")
	snap, err := c.Snapshot(context.Background(), "SOL")
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if snap.LastPrice <= 0 {
		t.Errorf("expected positive last price, got %f", snap.LastPrice)
	}
	if fetcher.snapshotCalls != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", fetcher.snapshotCalls)
	}
}

func TestSnapshot_FixedOverrideReturned(t *testing.T) {
	px := 0.052
	mock := &MockFetcher{
		Snapshots: map[string]*model.Snapshot{
			"ETH": {
				Symbol:         "ETH",
				LastPrice:      2000,
				Bid:            1999,
				Ask:            2001,
				QuoteVolume:    50000000,
				SpreadPercent:  SpreadPercent(1999, 2001),
				BenchmarkPrice: &px,
			},
		},
	}
	c := NewCollector(mock, cache.NewMemory(), time.Minute, time.Minute)

	snap, err := c.Snapshot(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.LastPrice != 2000 {
		t.Errorf("expected override price 2000, got %f", snap.LastPrice)
	}
	if snap.BenchmarkPrice == nil || *snap.BenchmarkPrice != 0.052 {
		t.Errorf("benchmark price lost through cache: %+v", snap.BenchmarkPrice)
	}
}

func TestSpreadPercent(t *testing.T) {
	cases := []struct {
		name     string
		bid, ask float64
		want     float64
	}{
		{"one percent", 99, 100, 1.0},
		{"no spread", 100, 100, 0},
		{"zero ask", 99, 0, 0},
	}
	for _, tc := range cases {
		if got := SpreadPercent(tc.bid, tc.ask); got != tc.want {
			t.Errorf("%s: SpreadPercent(%f, %f) = %f, want %f", tc.name, tc.bid, tc.ask, got, tc.want)
		}
	}
}

func TestParseKline_ConvertsFields(t *testing.T) {
	k := &binance.Kline{
		OpenTime: 1700000000000,
		Open:     "100.5",
		High:     "101.25",
		Low:      "99.75",
		Close:    "100.9",
		Volume:   "1234.5",
	}
	c, err := parseKline(k)
	if err != nil {
		t.Fatalf("parse kline: %v", err)
	}
	if c.Open != 100.5 || c.High != 101.25 || c.Low != 99.75 || c.Close != 100.9 || c.Volume != 1234.5 {
		t.Errorf("unexpected candle values: %+v", c)
	}
	if c.Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("open time not preserved: %v", c.Timestamp)
	}
}

func TestParseKline_RejectsBadNumber(t *testing.T) {
	k := &binance.Kline{Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}
	if _, err := parseKline(k); err == nil {
		t.Fatal("expected error for malformed kline field")
	}
}
