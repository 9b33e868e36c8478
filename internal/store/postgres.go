package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/model"
)

// PostgresConfig holds connection settings for the Postgres store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PostgresStore persists cycle results to a PostgreSQL database.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to Postgres, verifies the connection and runs migrations.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithFields(log.Fields{"component": "store"}).
		Infof("postgres store connected: %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	return s, nil
}

func (s *PostgresStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id          TEXT PRIMARY KEY,
			benchmark   TEXT NOT NULL,
			started_at  BIGINT NOT NULL,
			finished_at BIGINT NOT NULL,
			analyzed    INTEGER NOT NULL,
			skipped     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS asset_analyses (
			id              BIGSERIAL PRIMARY KEY,
			cycle_id        TEXT NOT NULL,
			timestamp       BIGINT NOT NULL,
			symbol          TEXT NOT NULL,
			price           DOUBLE PRECISION,
			benchmark_price DOUBLE PRECISION,
			score           DOUBLE PRECISION,
			rank            INTEGER,
			recommendation  TEXT,
			returns_json    TEXT,
			rsi             DOUBLE PRECISION,
			atr_percent     DOUBLE PRECISION,
			quote_volume    DOUBLE PRECISION,
			spread_percent  DOUBLE PRECISION,
			signals_json    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON asset_analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON asset_analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS pair_candidates (
			id             BIGSERIAL PRIMARY KEY,
			cycle_id       TEXT NOT NULL,
			timestamp      BIGINT NOT NULL,
			strong         TEXT NOT NULL,
			weak           TEXT NOT NULL,
			score_diff     DOUBLE PRECISION,
			perf_diff_4h   DOUBLE PRECISION,
			pair_score     DOUBLE PRECISION,
			recommendation TEXT,
			rationale      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_ts ON pair_candidates(timestamp)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id        BIGSERIAL PRIMARY KEY,
			timestamp BIGINT NOT NULL,
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

func (s *PostgresStore) SaveCycle(ctx context.Context, result *model.CycleResult) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO cycles
		(id, benchmark, started_at, finished_at, analyzed, skipped)
		VALUES ($1,$2,$3,$4,$5,$6)`,
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
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
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
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			result.ID, result.FinishedAt.Unix(), p.Strong, p.Weak,
			p.ScoreDiff, p.PerfDiff4h, p.PairScore, p.Recommendation, p.Rationale,
		)
		if err != nil {
			return fmt.Errorf("insert pair %s/%s: %w", p.Strong, p.Weak, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) SaveNotification(ctx context.Context, kind, title, message string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO notifications
		(timestamp, kind, title, message)
		VALUES ($1,$2,$3,$4)`,
		time.Now().Unix(), kind, title, message,
	)
	return err
}

func (s *PostgresStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).Unix()
	stmts := []string{
		`DELETE FROM asset_analyses WHERE timestamp < $1`,
		`DELETE FROM pair_candidates WHERE timestamp < $1`,
		`DELETE FROM notifications WHERE timestamp < $1`,
		`DELETE FROM cycles WHERE started_at < $1`,
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

func (s *PostgresStore) Close() error {
	log.WithFields(log.Fields{"component": "store"}).Info("closing postgres store")
	return s.db.Close()
}
