package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"PairSentinel/internal/model"
)

func TestFormatSignalAlert(t *testing.T) {
	coin := &model.AssetAnalysis{Symbol: "ETH", Score: 85.25, Recommendation: model.RecStrongBuy}
	msg := FormatSignalAlert(coin)

	if msg.Kind != KindSignal {
		t.Errorf("expected signal kind, got %q", msg.Kind)
	}
	if !strings.Contains(msg.Title, "Strong Signal: ETH") {
		t.Errorf("unexpected title: %q", msg.Title)
	}
	if msg.Body != "Score: 85.25 | Recommendation: STRONG_BUY" {
		t.Errorf("unexpected body: %q", msg.Body)
	}
}

func TestFormatPairAlert_LongBody(t *testing.T) {
	pair := &model.PairCandidate{
		Strong:         "ETH",
		Weak:           "ADA",
		ScoreDiff:      35.0,
		PerfDiff4h:     6.2,
		PairScore:      35.0,
		Recommendation: "LONG_ETH_SHORT_ADA",
		Rationale:      model.RationaleMomentum,
	}
	msg := FormatPairAlert(pair)

	if !strings.Contains(msg.Title, "Crypto Signal: ETH/ADA") {
		t.Errorf("unexpected title: %q", msg.Title)
	}
	want := "Signal: LONG_ETH_SHORT_ADA\n" +
		"Confidence: 35.0%\n" +
		"Timeframe: 4H\n" +
		"Score Diff: 35.00\n" +
		"Perf Diff: 6.20%\n" +
		"Entry Logic: Strong vs Weak momentum"
	if msg.Body != want {
		t.Errorf("unexpected body:\n%s\nwant:\n%s", msg.Body, want)
	}
	if len(msg.Tags) != 2 || msg.Tags[0] != "chart_increasing" || msg.Tags[1] != "moneybag" {
		t.Errorf("unexpected tags: %v", msg.Tags)
	}
}

func TestFormatCycleError_MaxPriority(t *testing.T) {
	msg := FormatCycleError("BTC", errors.New("klines unavailable"))

	if msg.Priority != "max" {
		t.Errorf("expected max priority, got %q", msg.Priority)
	}
	if !strings.Contains(msg.Body, "BTC") || !strings.Contains(msg.Body, "klines unavailable") {
		t.Errorf("body missing benchmark or cause: %q", msg.Body)
	}
}

func TestFormatDailySummary_Sections(t *testing.T) {
	summary := &model.MarketSummary{
		Condition:     model.ConditionBullish,
		Volatility:    "Stable",
		AverageScore:  61.5,
		AnalyzedCount: 14,
		StrongCount:   3,
		TopPairs: []*model.PairCandidate{
			{Strong: "ETH", Weak: "ADA", PairScore: 35.0, Recommendation: "LONG_ETH_SHORT_ADA"},
		},
		GeneratedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	msg := FormatDailySummary(summary)

	if msg.Kind != KindSummary {
		t.Errorf("expected summary kind, got %q", msg.Kind)
	}
	for _, want := range []string{
		"Market Status: BULLISH",
		"1. ETH/ADA - LONG_ETH_SHORT_ADA (Score: 35.0)",
		"Average Score: 61.50",
		"Total Coins Analyzed: 14",
		"Strong Signals: 3",
		"Market Condition: Stable",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("summary body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestFormatDailySummary_CapsPairsAtThree(t *testing.T) {
	summary := &model.MarketSummary{
		Condition:  model.ConditionNeutral,
		Volatility: "Stable",
		TopPairs: []*model.PairCandidate{
			{Strong: "A", Weak: "B", Recommendation: "LONG_A_SHORT_B"},
			{Strong: "C", Weak: "D", Recommendation: "LONG_C_SHORT_D"},
			{Strong: "E", Weak: "F", Recommendation: "LONG_E_SHORT_F"},
			{Strong: "G", Weak: "H", Recommendation: "LONG_G_SHORT_H"},
		},
		GeneratedAt: time.Now(),
	}
	msg := FormatDailySummary(summary)

	if !strings.Contains(msg.Body, "3. E/F") {
		t.Errorf("expected third pair listed:\n%s", msg.Body)
	}
	if strings.Contains(msg.Body, "4. G/H") {
		t.Errorf("expected pair list capped at three:\n%s", msg.Body)
	}
}
