package calculator

import (
	"errors"

	"PairSentinel/internal/model"
)

// CalculateRSI computes the RSI over the given period using a simple
// rolling mean of gains and losses (no Wilder smoothing). Requires at
// least period+1 candles so that a full window of close-to-close
// deltas exists.
//
// When the average loss over the window is zero the RSI is defined as
// exactly 100 (fully bullish), never a division by zero.
func CalculateRSI(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(candles) < period+1 {
		return 0, ErrInsufficientData
	}

	closes := extractCloses(candles)

	// Arithmetic mean of the last `period` deltas.
	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
