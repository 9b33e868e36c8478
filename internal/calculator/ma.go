package calculator

import "errors"

// CalculateSMA computes the simple moving average of the given prices
// over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMA computes the exponential moving average of the given
// prices, seeded with the SMA of the first period values and smoothed
// with factor 2/(period+1).
func CalculateEMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += prices[i]
	}
	ema := seed / float64(period)
	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(prices); i++ {
		ema = prices[i]*k + ema*(1.0-k)
	}
	return ema, nil
}
