package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance"
	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/model"
)

// BinanceFetcher pulls candles and ticker snapshots from the Binance
// REST API. Base symbols are composed with the configured quote asset
// ("ETH" -> "ETHUSDT"); the benchmark-denominated price comes from the
// "<base><benchmark>" market when Binance lists one.
type BinanceFetcher struct {
	client     *binance.Client
	quoteAsset string
	benchmark  string
}

// NewBinanceFetcher creates a Binance-backed fetcher. Public market
// endpoints work with empty credentials.
func NewBinanceFetcher(apiKey, apiSecret, quoteAsset, benchmark string) *BinanceFetcher {
	return &BinanceFetcher{
		client:     binance.NewClient(apiKey, apiSecret),
		quoteAsset: quoteAsset,
		benchmark:  benchmark,
	}
}

func (b *BinanceFetcher) Name() string { return "binance" }

func (b *BinanceFetcher) pair(symbol string) string { return symbol + b.quoteAsset }

// FetchSeries implements Fetcher.
func (b *BinanceFetcher) FetchSeries(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(b.pair(symbol)).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s klines: %w", symbol, err)
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("parse %s kline: %w", symbol, err)
		}
		candles = append(candles, c)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   candles,
		FetchedAt: time.Now(),
	}, nil
}

// FetchSnapshot implements Fetcher.
func (b *BinanceFetcher) FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error) {
	stats, err := b.client.NewListPriceChangeStatsService().
		Symbol(b.pair(symbol)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s ticker: %w", symbol, err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("fetch %s ticker: %w", symbol, ErrNoData)
	}
	s := stats[0]

	last, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s last price: %w", symbol, err)
	}
	bid, err := strconv.ParseFloat(s.BidPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s bid price: %w", symbol, err)
	}
	ask, err := strconv.ParseFloat(s.AskPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s ask price: %w", symbol, err)
	}
	quoteVolume, err := strconv.ParseFloat(s.QuoteVolume, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s quote volume: %w", symbol, err)
	}

	snapshot := &model.Snapshot{
		Symbol:        symbol,
		LastPrice:     last,
		Bid:           bid,
		Ask:           ask,
		QuoteVolume:   quoteVolume,
		SpreadPercent: SpreadPercent(bid, ask),
		FetchedAt:     time.Now(),
	}

	if symbol == b.benchmark {
		one := 1.0
		snapshot.BenchmarkPrice = &one
	} else if px, ok := b.benchmarkQuote(ctx, symbol); ok {
		snapshot.BenchmarkPrice = &px
	}

	return snapshot, nil
}

// benchmarkQuote resolves the benchmark-denominated last price, e.g.
// from the ETHBTC market. An unlisted market is normal, not an error.
func (b *BinanceFetcher) benchmarkQuote(ctx context.Context, symbol string) (float64, bool) {
	stats, err := b.client.NewListPriceChangeStatsService().
		Symbol(symbol + b.benchmark).
		Do(ctx)
	if err != nil || len(stats) == 0 {
		log.WithFields(log.Fields{"component": "collector", "symbol": symbol}).
			Debugf("no %s-quoted market: [%v]", b.benchmark, err)
		return 0, false
	}
	px, err := strconv.ParseFloat(stats[0].LastPrice, 64)
	if err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

func parseKline(k *binance.Kline) (model.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return model.Candle{}, err
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return model.Candle{}, err
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return model.Candle{}, err
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return model.Candle{}, err
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return model.Candle{}, err
	}
	return model.Candle{
		Timestamp: parseMilliseconds(k.OpenTime),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func parseMilliseconds(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond))
}

// SpreadPercent computes the bid/ask spread as a percentage of the ask
// price. A zero ask yields 0.
func SpreadPercent(bid, ask float64) float64 {
	if ask == 0 {
		return 0
	}
	return (ask - bid) / ask * 100.0
}
