package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"PairSentinel/internal/model"
)

// SQLiteStore persists cycle results to a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL keeps reads open while the cycle writer holds the lock.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithFields(log.Fields{"component": "store"}).Infof("sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          TEXT PRIMARY KEY,
			benchmark   TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			analyzed    INTEGER NOT NULL,
			skipped     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS asset_analyses (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id        TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			symbol          TEXT NOT NULL,
			price           REAL,
			benchmark_price REAL,
			score           REAL,
			rank            INTEGER,
			recommendation  TEXT,
			returns_json    TEXT,
			rsi             REAL,
			atr_percent     REAL,
			quote_volume    REAL,
			spread_percent  REAL,
			signals_json    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON asset_analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON asset_analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS pair_candidates (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id       TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			strong         TEXT NOT NULL,
			weak           TEXT NOT NULL,
			score_diff     REAL,
			perf_diff_4h   REAL,
			pair_score     REAL,
			recommendation TEXT,
			rationale      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_ts ON pair_candidates(timestamp)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			title     TEXT,
			message   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_ts ON notifications(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveCycle(ctx context.Context, result *model.CycleResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO cycles
		(id, benchmark, started_at, finished_at, analyzed, skipped)
		VALUES (?,?,?,?,?,?)`,
		result.ID, result.Benchmark,
		result.StartedAt.Unix(), result.FinishedAt.Unix(),
		len(result.Analyses), len(result.Skipped),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, a := range result.Analyses {
		returnsJSON, err := json.Marshal(a.Returns)
		if err != nil {
			return fmt.Errorf("encode %s returns: %w", a.Symbol, err)
		}
		signalsJSON, err := json.Marshal(a.Signals)
		if err != nil {
			return fmt.Errorf("encode %s signals: %w", a.Symbol, err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO asset_analyses
			(cycle_id, timestamp, symbol, price, benchmark_price, score, rank,
			 recommendation, returns_json, rsi, atr_percent, quote_volume,
			 spread_percent, signals_json)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			result.ID, a.AnalyzedAt.Unix(), a.Symbol, a.Price, a.BenchmarkPrice,
			a.Score, a.Rank, string(a.Recommendation), string(returnsJSON),
			a.RSI, a.ATRPercent, a.QuoteVolume, a.SpreadPercent, string(signalsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert %s analysis: %w", a.Symbol, err)
		}
	}

	for _, p := range result.Pairs {
		_, err = tx.ExecContext(ctx, `INSERT INTO pair_candidates
			(cycle_id, timestamp, strong, weak, score_diff, perf_diff_4h,
			 pair_score, recommendation, rationale)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			result.ID, result.FinishedAt.Unix(), p.Strong, p.Weak,
			p.ScoreDiff, p.PerfDiff4h, p.PairScore, p.Recommendation, p.Rationale,
		)
		if err != nil {
			return fmt.Errorf("insert pair %s/%s: %w", p.Strong, p.Weak, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) SaveNotification(ctx context.Context, kind, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO notifications
		(timestamp, kind, title, message)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), kind, title, message,
	)
	return err
}

func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).Unix()
	stmts := []string{
		`DELETE FROM asset_analyses WHERE timestamp < ?`,
		`DELETE FROM pair_candidates WHERE timestamp < ?`,
		`DELETE FROM notifications WHERE timestamp < ?`,
		`DELETE FROM cycles WHERE started_at < ?`,
	}

	var removed int64
	for _, stmt := range stmts {
		res, err := s.db.ExecContext(ctx, stmt, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += n
		}
	}

	log.WithFields(log.Fields{"component": "store"}).
		Infof("cleanup removed %d rows older than %s", removed, olderThan)
	return nil
}

func (s *SQLiteStore) Close() error {
	log.WithFields(log.Fields{"component": "store"}).Info("closing sqlite store")
	return s.db.Close()
}
