package analyzer

import "PairSentinel/internal/model"

// DetectSignals evaluates the fixed-threshold signal rules against one
// asset. Rules whose inputs are unavailable are skipped, and each tag
// appears at most once. Tag order follows rule order; consumers treat
// the result as a set.
func (a *Analyzer) DetectSignals(coin *model.AssetAnalysis) []model.Signal {
	var signals []model.Signal

	if coin.Returns[model.Horizon1h] > 2 {
		signals = append(signals, model.SignalStrongVsBTC1h)
	}
	if coin.Returns[model.Horizon4h] > 5 {
		signals = append(signals, model.SignalStrongVsBTC4h)
	}

	if coin.RSI != nil {
		if *coin.RSI < 30 {
			signals = append(signals, model.SignalRSIOversold)
		} else if *coin.RSI > 70 {
			signals = append(signals, model.SignalRSIOverbought)
		}
	}

	if coin.ATRPercent != nil {
		if *coin.ATRPercent < 1.0 {
			signals = append(signals, model.SignalLowVolatility)
		} else if *coin.ATRPercent > 8.0 {
			signals = append(signals, model.SignalHighVolatility)
		}
	}

	if coin.QuoteVolume < a.minLiquidity {
		signals = append(signals, model.SignalLowLiquidity)
	}

	return signals
}
