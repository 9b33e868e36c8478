package model

import "time"

// Candle represents a single OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries holds ordered candles for one symbol and timeframe.
// Candles are ordered oldest first with strictly increasing timestamps.
// The series may be shorter than requested when the exchange has less
// history; consumers must tolerate that.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Candles   []Candle  `json:"candles"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Snapshot is a lightweight ticker view of one symbol.
type Snapshot struct {
	Symbol         string    `json:"symbol"`
	LastPrice      float64   `json:"last_price"`
	Bid            float64   `json:"bid"`
	Ask            float64   `json:"ask"`
	QuoteVolume    float64   `json:"quote_volume"`
	SpreadPercent  float64   `json:"spread_percent"`
	BenchmarkPrice *float64  `json:"benchmark_price,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}
