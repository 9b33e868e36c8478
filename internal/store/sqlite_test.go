package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"PairSentinel/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countRows(t *testing.T, s *SQLiteStore, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func testCycle(at time.Time) *model.CycleResult {
	rsi := 62.5
	return &model.CycleResult{
		ID:        "cycle-1",
		Benchmark: "BTC",
		Analyses: []*model.AssetAnalysis{
			{
				Symbol:         "ETH",
				Price:          2000,
				Returns:        map[string]float64{"1h": 0.5, "4h": 1.2, "1d": -0.3, "1w": 4.1},
				RSI:            &rsi,
				Score:          78.5,
				Rank:           1,
				Recommendation: model.RecBuy,
				Signals:        []model.Signal{model.SignalStrongVsBTC4h},
				AnalyzedAt:     at,
			},
			{
				Symbol:         "DOGE",
				Price:          0.1,
				Returns:        map[string]float64{"1h": -1.0, "4h": -2.5, "1d": -6.0, "1w": -9.9},
				Score:          22.0,
				Rank:           2,
				Recommendation: model.RecStrongSell,
				AnalyzedAt:     at,
			},
		},
		Pairs: []*model.PairCandidate{
			{
				Strong:         "ETH",
				Weak:           "DOGE",
				ScoreDiff:      56.5,
				PerfDiff4h:     3.7,
				PairScore:      56.5,
				Recommendation: "LONG_ETH_SHORT_DOGE",
				Rationale:      model.RationaleMomentum,
			},
		},
		StartedAt:  at,
		FinishedAt: at.Add(30 * time.Second),
	}
}

func TestSQLiteStore_SaveCycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveCycle(ctx, testCycle(time.Now())); err != nil {
		t.Fatalf("save cycle: %v", err)
	}

	if n := countRows(t, s, "cycles"); n != 1 {
		t.Errorf("expected 1 cycle row, got %d", n)
	}
	if n := countRows(t, s, "asset_analyses"); n != 2 {
		t.Errorf("expected 2 analysis rows, got %d", n)
	}
	if n := countRows(t, s, "pair_candidates"); n != 1 {
		t.Errorf("expected 1 pair row, got %d", n)
	}

	var returnsJSON string
	var rsi sql.NullFloat64
	err := s.db.QueryRow(`SELECT returns_json, rsi FROM asset_analyses WHERE symbol = 'ETH'`).
		Scan(&returnsJSON, &rsi)
	if err != nil {
		t.Fatalf("read back ETH row: %v", err)
	}
	var returns map[string]float64
	if err := json.Unmarshal([]byte(returnsJSON), &returns); err != nil {
		t.Fatalf("decode returns: %v", err)
	}
	if returns["1w"] != 4.1 {
		t.Errorf("expected 1w return 4.1, got %f", returns["1w"])
	}
	if !rsi.Valid || rsi.Float64 != 62.5 {
		t.Errorf("expected RSI 62.5, got %+v", rsi)
	}

	err = s.db.QueryRow(`SELECT rsi FROM asset_analyses WHERE symbol = 'DOGE'`).Scan(&rsi)
	if err != nil {
		t.Fatalf("read back DOGE row: %v", err)
	}
	if rsi.Valid {
		t.Errorf("expected NULL RSI for DOGE, got %f", rsi.Float64)
	}
}

func TestSQLiteStore_SaveNotification(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveNotification(context.Background(), "signal", "Strong Signal", "ETH looks strong")
	if err != nil {
		t.Fatalf("save notification: %v", err)
	}

	var kind, title string
	err = s.db.QueryRow(`SELECT kind, title FROM notifications`).Scan(&kind, &title)
	if err != nil {
		t.Fatalf("read back notification: %v", err)
	}
	if kind != "signal" || title != "Strong Signal" {
		t.Errorf("unexpected notification row: kind=%q title=%q", kind, title)
	}
}

func TestSQLiteStore_CleanupKeepsRecentRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	if err := s.SaveCycle(ctx, testCycle(old)); err != nil {
		t.Fatalf("save old cycle: %v", err)
	}
	if err := s.SaveNotification(ctx, "signal", "Strong Signal", "ETH looks strong"); err != nil {
		t.Fatalf("save notification: %v", err)
	}

	if err := s.Cleanup(ctx, 24*time.Hour); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if n := countRows(t, s, "asset_analyses"); n != 0 {
		t.Errorf("expected old analyses removed, got %d rows", n)
	}
	if n := countRows(t, s, "pair_candidates"); n != 0 {
		t.Errorf("expected old pairs removed, got %d rows", n)
	}
	if n := countRows(t, s, "cycles"); n != 0 {
		t.Errorf("expected old cycles removed, got %d rows", n)
	}
	if n := countRows(t, s, "notifications"); n != 1 {
		t.Errorf("expected recent notification kept, got %d rows", n)
	}
}
