package calculator

import (
	"errors"

	"PairSentinel/internal/model"
)

// ErrInsufficientData marks an indicator that cannot be computed from
// the candles at hand. Callers treat it as "unavailable", not as a
// pipeline failure.
var ErrInsufficientData = errors.New("insufficient candles for indicator")

func extractCloses(candles []model.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
