package model

import "time"

// Recommendation maps a composite score band to an action.
type Recommendation string

const (
	RecStrongBuy  Recommendation = "STRONG_BUY"
	RecBuy        Recommendation = "BUY"
	RecMildBuy    Recommendation = "MILD_BUY"
	RecNeutral    Recommendation = "NEUTRAL"
	RecMildSell   Recommendation = "MILD_SELL"
	RecSell       Recommendation = "SELL"
	RecStrongSell Recommendation = "STRONG_SELL"
)

// Signal tags a notable technical condition on one asset.
type Signal string

const (
	SignalStrongVsBTC1h  Signal = "STRONG_VS_BTC_1H"
	SignalStrongVsBTC4h  Signal = "STRONG_VS_BTC_4H"
	SignalRSIOversold    Signal = "RSI_OVERSOLD"
	SignalRSIOverbought  Signal = "RSI_OVERBOUGHT"
	SignalLowVolatility  Signal = "LOW_VOLATILITY"
	SignalHighVolatility Signal = "HIGH_VOLATILITY"
	SignalLowLiquidity   Signal = "LOW_LIQUIDITY"
)

// Horizon labels keying the benchmark-relative return vector.
const (
	Horizon1h = "1h"
	Horizon4h = "4h"
	Horizon1d = "1d"
	Horizon1w = "1w"
)

// Horizons lists the return horizons in display order.
var Horizons = []string{Horizon1h, Horizon4h, Horizon1d, Horizon1w}

// AssetAnalysis is the per-symbol output of one analysis cycle.
// Built fresh every cycle; immutable once ranked.
type AssetAnalysis struct {
	Symbol         string             `json:"symbol"`
	Price          float64            `json:"price"`
	BenchmarkPrice *float64           `json:"benchmark_price,omitempty"`
	Returns        map[string]float64 `json:"returns"` // horizon label -> benchmark-relative return %
	RSI            *float64           `json:"rsi,omitempty"`
	ATRPercent     *float64           `json:"atr_percent,omitempty"`
	QuoteVolume    float64            `json:"quote_volume"`
	SpreadPercent  float64            `json:"spread_percent"`
	Score          float64            `json:"score"`
	Rank           int                `json:"rank"`
	Recommendation Recommendation     `json:"recommendation"`
	Signals        []Signal           `json:"signals"`
	AnalyzedAt     time.Time          `json:"analyzed_at"`
}
