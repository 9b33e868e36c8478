package analyzer

import (
	"fmt"
	"math"

	"PairSentinel/internal/model"
)

// Weights holds the five sub-score weights of the composite score.
// They must sum to 1.0.
type Weights struct {
	Performance float64
	Momentum    float64
	Volatility  float64
	Liquidity   float64
	VolumeTrend float64
}

// DefaultWeights mirrors the standard scoring profile.
var DefaultWeights = Weights{
	Performance: 0.35,
	Momentum:    0.25,
	Volatility:  0.20,
	Liquidity:   0.10,
	VolumeTrend: 0.10,
}

// Analyzer applies the relative-strength scoring model, the signal
// rules, and the long/short pair search to per-cycle asset data. All
// methods are pure with respect to their inputs.
type Analyzer struct {
	weights      Weights
	minLiquidity float64
	volThreshold float64
	topPairs     int
}

// New validates the weight profile and builds an Analyzer.
func New(w Weights, minLiquidityUSD, volatilityThreshold float64, topPairs int) (*Analyzer, error) {
	sum := w.Performance + w.Momentum + w.Volatility + w.Liquidity + w.VolumeTrend
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("sub-score weights must sum to 1.0, got %.4f", sum)
	}
	if minLiquidityUSD <= 0 {
		return nil, fmt.Errorf("minimum liquidity must be positive, got %.2f", minLiquidityUSD)
	}
	if volatilityThreshold <= 0 {
		return nil, fmt.Errorf("volatility threshold must be positive, got %.2f", volatilityThreshold)
	}
	if topPairs <= 0 {
		return nil, fmt.Errorf("top pairs count must be positive, got %d", topPairs)
	}
	return &Analyzer{
		weights:      w,
		minLiquidity: minLiquidityUSD,
		volThreshold: volatilityThreshold,
		topPairs:     topPairs,
	}, nil
}

// recommendationBands maps score floors to actions, highest first.
var recommendationBands = []struct {
	MinScore float64
	Rec      model.Recommendation
}{
	{80, model.RecStrongBuy},
	{70, model.RecBuy},
	{60, model.RecMildBuy},
	{40, model.RecNeutral},
	{30, model.RecMildSell},
	{20, model.RecSell},
}

// Recommend maps a composite score to its action band.
func Recommend(score float64) model.Recommendation {
	for _, b := range recommendationBands {
		if score >= b.MinScore {
			return b.Rec
		}
	}
	return model.RecStrongSell
}
