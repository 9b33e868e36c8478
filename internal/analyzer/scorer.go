package analyzer

import (
	"math"

	"PairSentinel/internal/model"
)

// horizonWeights splits the performance sub-score across the return
// horizons.
var horizonWeights = map[string]float64{
	model.Horizon1h: 0.15,
	model.Horizon4h: 0.30,
	model.Horizon1d: 0.40,
	model.Horizon1w: 0.15,
}

// volumeTrendScore is a fixed neutral placeholder until historical
// volume data feeds this factor.
const volumeTrendScore = 0.5

// Score combines the five weighted sub-scores into one composite in
// [0,100], rounded to 2 decimals. Identical inputs always produce the
// identical score.
func (a *Analyzer) Score(coin *model.AssetAnalysis) float64 {
	total := a.performanceScore(coin.Returns) * a.weights.Performance * 100
	total += momentumScore(coin.RSI) * a.weights.Momentum * 100
	total += a.volatilityScore(coin.ATRPercent) * a.weights.Volatility * 100
	total += a.liquidityScore(coin.QuoteVolume) * a.weights.Liquidity * 100
	total += volumeTrendScore * a.weights.VolumeTrend * 100
	return math.Round(total*100) / 100
}

// performanceScore maps the horizon-weighted benchmark-relative return
// to [0,1]. The weighted sum is clipped to ±20% before mapping.
func (a *Analyzer) performanceScore(returns map[string]float64) float64 {
	var weighted float64
	for label, w := range horizonWeights {
		weighted += returns[label] * w
	}
	if weighted > 20 {
		weighted = 20
	}
	if weighted < -20 {
		weighted = -20
	}
	return (weighted/20 + 1) / 2
}

// momentumScore treats RSI strictly inside (30,70) as healthy.
// Overbought and oversold extremes still carry information and score
// 0.7. Missing RSI scores 0.
func momentumScore(rsi *float64) float64 {
	if rsi == nil {
		return 0
	}
	if *rsi > 30 && *rsi < 70 {
		return 1.0
	}
	return 0.7
}

// volatilityScore prefers ATR% inside [1.0, threshold]. Too-quiet
// markets score 0.5, too-chaotic ones 0.3, missing ATR 0.
func (a *Analyzer) volatilityScore(atrPercent *float64) float64 {
	if atrPercent == nil {
		return 0
	}
	switch {
	case *atrPercent < 1.0:
		return 0.5
	case *atrPercent <= a.volThreshold:
		return 1.0
	default:
		return 0.3
	}
}

// liquidityScore rewards quote volume at multiples of the configured
// minimum.
func (a *Analyzer) liquidityScore(volumeUSD float64) float64 {
	switch {
	case volumeUSD >= a.minLiquidity*2:
		return 1.0
	case volumeUSD >= a.minLiquidity:
		return 0.7
	default:
		return 0.3
	}
}
