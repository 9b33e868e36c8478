package calculator

import (
	"errors"

	"PairSentinel/internal/model"
)

// CalculateReturn computes the percentage return between the last
// close and the close n positions back from the end (the last close
// itself when n=1). A series shorter than n yields the neutral
// sentinel 0.0 with a nil error: short history is a degenerate
// default here, not a failure. A zero reference close also resolves
// to 0.0 rather than Inf.
func CalculateReturn(candles []model.Candle, n int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("period count must be positive")
	}
	if len(candles) < n {
		return 0.0, nil
	}
	last := candles[len(candles)-1].Close
	ref := candles[len(candles)-n].Close
	if ref == 0 {
		return 0.0, nil
	}
	return (last/ref - 1.0) * 100.0, nil
}

// CalculateReturns computes the return for every named horizon,
// keyed by label. Horizons that cannot be computed carry the 0.0
// sentinel, so the result always has one entry per label.
func CalculateReturns(candles []model.Candle, horizons map[string]int) (map[string]float64, error) {
	out := make(map[string]float64, len(horizons))
	for label, n := range horizons {
		r, err := CalculateReturn(candles, n)
		if err != nil {
			return nil, err
		}
		out[label] = r
	}
	return out, nil
}
