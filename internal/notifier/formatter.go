package notifier

import (
	"fmt"
	"strings"

	"PairSentinel/internal/model"
)

// FormatSignalAlert renders a strong single-asset signal push.
func FormatSignalAlert(coin *model.AssetAnalysis) Message {
	return Message{
		Kind:  KindSignal,
		Title: fmt.Sprintf("🚀 Strong Signal: %s", coin.Symbol),
		Body:  fmt.Sprintf("Score: %.2f | Recommendation: %s", coin.Score, coin.Recommendation),
		Tags:  []string{"rocket", "chart_increasing"},
	}
}

// FormatPairAlert renders a long/short pair recommendation.
func FormatPairAlert(pair *model.PairCandidate) Message {
	emoji := "⚡"
	trend := "chart_decreasing"
	switch {
	case strings.Contains(pair.Recommendation, "LONG"):
		emoji, trend = "📈", "chart_increasing"
	case strings.Contains(pair.Recommendation, "SHORT"):
		emoji, trend = "📉", "chart_decreasing"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Signal: %s\n", pair.Recommendation))
	b.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", pair.PairScore))
	b.WriteString("Timeframe: 4H\n")
	b.WriteString(fmt.Sprintf("Score Diff: %.2f\n", pair.ScoreDiff))
	b.WriteString(fmt.Sprintf("Perf Diff: %.2f%%\n", pair.PerfDiff4h))
	b.WriteString(fmt.Sprintf("Entry Logic: %s", pair.Rationale))

	return Message{
		Kind:  KindPair,
		Title: fmt.Sprintf("%s Crypto Signal: %s/%s", emoji, pair.Strong, pair.Weak),
		Body:  b.String(),
		Tags:  []string{trend, "moneybag"},
	}
}

// FormatCycleError renders an analysis failure as a max-priority push.
func FormatCycleError(benchmark string, cycleErr error) Message {
	return Message{
		Kind:     KindError,
		Title:    "❌ System Error",
		Body:     fmt.Sprintf("Analysis cycle failed (benchmark %s): %v", benchmark, cycleErr),
		Tags:     []string{"warning", "x"},
		Priority: "max",
	}
}

// FormatDailySummary renders the daily market digest.
func FormatDailySummary(summary *model.MarketSummary) Message {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 Report Time: %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("Market Status: %s\n\n", summary.Condition))

	b.WriteString("🏆 Top Trading Pairs:\n")
	for i, pair := range summary.TopPairs {
		if i == 3 {
			break
		}
		b.WriteString(fmt.Sprintf("%d. %s/%s - %s (Score: %.1f)\n",
			i+1, pair.Strong, pair.Weak, pair.Recommendation, pair.PairScore))
	}

	b.WriteString("\n⚡ Market Stats:\n")
	b.WriteString(fmt.Sprintf("Average Score: %.2f\n", summary.AverageScore))
	b.WriteString(fmt.Sprintf("Total Coins Analyzed: %d\n", summary.AnalyzedCount))
	b.WriteString(fmt.Sprintf("Strong Signals: %d\n", summary.StrongCount))
	b.WriteString(fmt.Sprintf("Market Condition: %s", summary.Volatility))

	return Message{
		Kind:     KindSummary,
		Title:    "📊 Daily Crypto Market Summary",
		Body:     b.String(),
		Tags:     []string{"bar_chart", "calendar"},
		Priority: "default",
	}
}

// FormatStartup announces the service coming online.
func FormatStartup() Message {
	return Message{
		Kind:  KindSystem,
		Title: "🚀 PairSentinel Started",
		Body:  "System is now online and analyzing the market",
		Tags:  []string{"white_check_mark", "rocket"},
	}
}

// FormatShutdown announces a clean shutdown.
func FormatShutdown() Message {
	return Message{
		Kind:  KindSystem,
		Title: "🛑 PairSentinel Stopped",
		Body:  "System has been shut down",
		Tags:  []string{"stop_sign", "warning"},
	}
}
