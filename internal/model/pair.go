package model

import "time"

// Pair rationale strings attached to classified candidates.
const (
	RationaleMomentum      = "Strong vs Weak momentum"
	RationaleMeanReversion = "Weak vs Strong mean reversion"
)

// PairCandidate proposes a long/short pairing between a strong and a
// weak asset from the same ranked cycle.
type PairCandidate struct {
	Strong         string  `json:"strong"`
	Weak           string  `json:"weak"`
	ScoreDiff      float64 `json:"score_diff"`
	PerfDiff4h     float64 `json:"perf_diff_4h"`
	PairScore      float64 `json:"pair_score"`
	Recommendation string  `json:"recommendation"` // e.g. "LONG_ETH_SHORT_ADA"
	Rationale      string  `json:"rationale"`
}

// SkipNote records a symbol dropped from a cycle and why.
type SkipNote struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// CycleResult aggregates everything one completed cycle produced.
type CycleResult struct {
	ID         string           `json:"id"`
	Benchmark  string           `json:"benchmark"`
	Analyses   []*AssetAnalysis `json:"analyses"` // sorted by score desc, dense rank assigned
	Pairs      []*PairCandidate `json:"pairs"`
	Skipped    []SkipNote       `json:"skipped,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// MarketCondition classifies the overall market tone of a cycle.
type MarketCondition string

const (
	ConditionBullish MarketCondition = "BULLISH"
	ConditionBearish MarketCondition = "BEARISH"
	ConditionNeutral MarketCondition = "NEUTRAL"
)

// MarketSummary condenses the latest cycle for the daily digest.
type MarketSummary struct {
	Condition     MarketCondition  `json:"condition"`
	Volatility    string           `json:"volatility"` // "Volatile" or "Stable"
	AverageScore  float64          `json:"average_score"`
	AnalyzedCount int              `json:"analyzed_count"`
	StrongCount   int              `json:"strong_count"` // assets scoring >= 70
	TopAssets     []*AssetAnalysis `json:"top_assets"`
	TopPairs      []*PairCandidate `json:"top_pairs"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
