package calculator

import (
	"errors"
	"math"

	"PairSentinel/internal/model"
)

// CalculateATR computes the Average True Range over the given period
// as a simple rolling mean of true ranges. Each true range needs the
// previous close, so at least period+1 candles are required.
func CalculateATR(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(candles) < period+1 {
		return 0, ErrInsufficientData
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		cur := candles[i]
		prevClose := candles[i-1].Close
		tr := cur.High - cur.Low
		if v := math.Abs(cur.High - prevClose); v > tr {
			tr = v
		}
		if v := math.Abs(cur.Low - prevClose); v > tr {
			tr = v
		}
		sum += tr
	}
	return sum / float64(period), nil
}

// ATRPercent expresses an ATR value as a percentage of the given
// price. A non-positive price yields 0.
func ATRPercent(atr, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return atr / price * 100.0
}
