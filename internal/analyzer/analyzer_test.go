package analyzer

import (
	"testing"

	"PairSentinel/internal/model"
)

func f64(v float64) *float64 { return &v }

func newTestAnalyzer(t *testing.T, topPairs int) *Analyzer {
	t.Helper()
	a, err := New(DefaultWeights, 10_000_000, 5.0, topPairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func TestNew_RejectsBadWeights(t *testing.T) {
	w := Weights{Performance: 0.5, Momentum: 0.2, Volatility: 0.1, Liquidity: 0.05, VolumeTrend: 0.05}
	if _, err := New(w, 10_000_000, 5.0, 5); err == nil {
		t.Fatal("expected error for weights summing to 0.9")
	}
	if _, err := New(DefaultWeights, 0, 5.0, 5); err == nil {
		t.Fatal("expected error for non-positive liquidity floor")
	}
	if _, err := New(DefaultWeights, 10_000_000, 5.0, 0); err == nil {
		t.Fatal("expected error for non-positive pair count")
	}
}

func TestScore_Deterministic(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	coin := &model.AssetAnalysis{
		Symbol:      "ETH",
		Returns:     map[string]float64{"1h": 1.2, "4h": 3.4, "1d": -0.5, "1w": 8.0},
		RSI:         f64(55),
		ATRPercent:  f64(2.5),
		QuoteVolume: 25_000_000,
	}
	first := a.Score(coin)
	second := a.Score(coin)
	if first != second {
		t.Fatalf("scoring is not idempotent: %.4f vs %.4f", first, second)
	}
	if first < 0 || first > 100 {
		t.Errorf("score out of range: %.4f", first)
	}
}

func TestScore_NeutralInputs(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	coin := &model.AssetAnalysis{Symbol: "ADA", Returns: map[string]float64{}}
	// perf 0.5*35 + momentum 0 + volatility 0 + liquidity 0.3*10 + trend 0.5*10
	if got := a.Score(coin); got != 25.5 {
		t.Errorf("expected 25.5 for neutral inputs, got %.2f", got)
	}
}

func TestScore_PerformanceClipping(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	surged := &model.AssetAnalysis{
		Symbol:  "SOL",
		Returns: map[string]float64{"1d": 100}, // weighted 40, clips to 20
	}
	crashed := &model.AssetAnalysis{
		Symbol:  "DOT",
		Returns: map[string]float64{"1d": -100},
	}
	if got := a.Score(surged); got != 43.0 {
		t.Errorf("expected clipped top performance score 43.0, got %.2f", got)
	}
	if got := a.Score(crashed); got != 8.0 {
		t.Errorf("expected clipped bottom performance score 8.0, got %.2f", got)
	}
}

func TestScore_MomentumContribution(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	base := &model.AssetAnalysis{Symbol: "LINK", Returns: map[string]float64{}}
	healthy := &model.AssetAnalysis{Symbol: "LINK", Returns: map[string]float64{}, RSI: f64(50)}
	extreme := &model.AssetAnalysis{Symbol: "LINK", Returns: map[string]float64{}, RSI: f64(75)}

	if diff := a.Score(healthy) - a.Score(base); diff != 25.0 {
		t.Errorf("healthy RSI should add the full momentum weight, got +%.2f", diff)
	}
	if diff := a.Score(extreme) - a.Score(base); diff != 17.5 {
		t.Errorf("extreme RSI should add the dampened momentum weight, got +%.2f", diff)
	}
}

func TestRecommend_AllBands(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Recommendation
	}{
		{92.5, model.RecStrongBuy},
		{80, model.RecStrongBuy},
		{75, model.RecBuy},
		{70, model.RecBuy},
		{60, model.RecMildBuy},
		{59.99, model.RecNeutral},
		{40, model.RecNeutral},
		{35, model.RecMildSell},
		{30, model.RecMildSell},
		{25, model.RecSell},
		{20, model.RecSell},
		{19.99, model.RecStrongSell},
		{0, model.RecStrongSell},
	}
	for _, tt := range tests {
		if got := Recommend(tt.score); got != tt.want {
			t.Errorf("score %.2f: expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestDetectSignals_RSIScenarios(t *testing.T) {
	a := newTestAnalyzer(t, 5)

	oversold := a.DetectSignals(&model.AssetAnalysis{
		Returns: map[string]float64{}, RSI: f64(25), QuoteVolume: 20_000_000,
	})
	if !containsSignal(oversold, model.SignalRSIOversold) {
		t.Error("RSI 25 must tag RSI_OVERSOLD")
	}

	overbought := a.DetectSignals(&model.AssetAnalysis{
		Returns: map[string]float64{}, RSI: f64(75), QuoteVolume: 20_000_000,
	})
	if !containsSignal(overbought, model.SignalRSIOverbought) {
		t.Error("RSI 75 must tag RSI_OVERBOUGHT")
	}

	healthy := a.DetectSignals(&model.AssetAnalysis{
		Returns: map[string]float64{}, RSI: f64(50), QuoteVolume: 20_000_000,
	})
	if containsSignal(healthy, model.SignalRSIOversold) || containsSignal(healthy, model.SignalRSIOverbought) {
		t.Error("RSI 50 must not tag either RSI extreme")
	}

	missing := a.DetectSignals(&model.AssetAnalysis{
		Returns: map[string]float64{}, QuoteVolume: 20_000_000,
	})
	if containsSignal(missing, model.SignalRSIOversold) || containsSignal(missing, model.SignalRSIOverbought) {
		t.Error("missing RSI must not tag RSI extremes")
	}
}

func TestDetectSignals_AllRules(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	coin := &model.AssetAnalysis{
		Symbol:      "AVAX",
		Returns:     map[string]float64{"1h": 2.5, "4h": 6.0},
		RSI:         f64(25),
		ATRPercent:  f64(0.5),
		QuoteVolume: 5_000_000,
	}
	signals := a.DetectSignals(coin)

	for _, want := range []model.Signal{
		model.SignalStrongVsBTC1h,
		model.SignalStrongVsBTC4h,
		model.SignalRSIOversold,
		model.SignalLowVolatility,
		model.SignalLowLiquidity,
	} {
		if !containsSignal(signals, want) {
			t.Errorf("expected signal %s in %v", want, signals)
		}
	}

	seen := make(map[model.Signal]bool, len(signals))
	for _, s := range signals {
		if seen[s] {
			t.Errorf("duplicate signal %s", s)
		}
		seen[s] = true
	}

	chaotic := a.DetectSignals(&model.AssetAnalysis{
		Returns: map[string]float64{}, ATRPercent: f64(9.0), QuoteVolume: 20_000_000,
	})
	if !containsSignal(chaotic, model.SignalHighVolatility) {
		t.Error("ATR% 9.0 must tag HIGH_VOLATILITY")
	}
}

func TestFindBestPairs_StrongVsWeak(t *testing.T) {
	a := newTestAnalyzer(t, 1)
	ranked := []*model.AssetAnalysis{
		{Symbol: "A", Score: 85, Returns: map[string]float64{"4h": 4.0}},
		{Symbol: "B", Score: 50, Returns: map[string]float64{"4h": -2.0}},
	}
	pairs := a.FindBestPairs(ranked)
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.Recommendation != "LONG_A_SHORT_B" {
		t.Errorf("expected LONG_A_SHORT_B, got %s", p.Recommendation)
	}
	if p.Rationale != model.RationaleMomentum {
		t.Errorf("expected momentum rationale, got %q", p.Rationale)
	}
	if p.PairScore != 35 {
		t.Errorf("expected pair score 35, got %.2f", p.PairScore)
	}
}

func TestFindBestPairs_OverlappingLists(t *testing.T) {
	// With fewer assets than 2*topPairs the top and bottom windows
	// overlap, so the same opportunity surfaces from both directions.
	a := newTestAnalyzer(t, 5)
	ranked := []*model.AssetAnalysis{
		{Symbol: "A", Score: 80, Returns: map[string]float64{"4h": 0}},
		{Symbol: "B", Score: 30, Returns: map[string]float64{"4h": -5}},
	}
	pairs := a.FindBestPairs(ranked)
	if len(pairs) != 2 {
		t.Fatalf("expected two classifications, got %d", len(pairs))
	}
	if pairs[0].Rationale != model.RationaleMomentum {
		t.Errorf("expected momentum first, got %q", pairs[0].Rationale)
	}
	if pairs[1].Rationale != model.RationaleMeanReversion {
		t.Errorf("expected mean reversion second, got %q", pairs[1].Rationale)
	}
	for _, p := range pairs {
		if p.Recommendation != "LONG_A_SHORT_B" {
			t.Errorf("both directions describe the same trade, got %s", p.Recommendation)
		}
	}
}

func TestFindBestPairs_NeutralDiscarded(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	ranked := []*model.AssetAnalysis{
		{Symbol: "A", Score: 60, Returns: map[string]float64{"4h": 1.0}},
		{Symbol: "B", Score: 50, Returns: map[string]float64{"4h": 0.5}},
	}
	if pairs := a.FindBestPairs(ranked); len(pairs) != 0 {
		t.Fatalf("expected no pairs without a clear edge, got %d", len(pairs))
	}
}

func TestFindBestPairs_NoSelfPairs(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	ranked := make([]*model.AssetAnalysis, 0, 6)
	for i, sym := range []string{"A", "B", "C", "D", "E", "F"} {
		ranked = append(ranked, &model.AssetAnalysis{
			Symbol:  sym,
			Score:   float64(90 - 14*i),
			Returns: map[string]float64{"4h": float64(5 - 2*i)},
		})
	}
	for _, p := range a.FindBestPairs(ranked) {
		if p.Strong == p.Weak {
			t.Errorf("self-pair returned: %s", p.Strong)
		}
	}
}

func TestFindBestPairs_SortedAndTruncated(t *testing.T) {
	a := newTestAnalyzer(t, 5)
	ranked := make([]*model.AssetAnalysis, 0, 12)
	for i := 0; i < 6; i++ {
		ranked = append(ranked, &model.AssetAnalysis{
			Symbol:  string(rune('A' + i)),
			Score:   95 - float64(i),
			Returns: map[string]float64{"4h": 6.0},
		})
	}
	for i := 0; i < 6; i++ {
		ranked = append(ranked, &model.AssetAnalysis{
			Symbol:  string(rune('N' + i)),
			Score:   30 - float64(i),
			Returns: map[string]float64{"4h": -1.0},
		})
	}
	pairs := a.FindBestPairs(ranked)
	if len(pairs) != 5 {
		t.Fatalf("expected truncation to 5 pairs, got %d", len(pairs))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].PairScore > pairs[i-1].PairScore {
			t.Errorf("pairs not sorted by pair score: %.2f after %.2f",
				pairs[i].PairScore, pairs[i-1].PairScore)
		}
	}
}

func containsSignal(signals []model.Signal, want model.Signal) bool {
	for _, s := range signals {
		if s == want {
			return true
		}
	}
	return false
}
