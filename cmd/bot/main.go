package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/analyzer"
	"PairSentinel/internal/cache"
	"PairSentinel/internal/collector"
	"PairSentinel/internal/config"
	"PairSentinel/internal/metrics"
	"PairSentinel/internal/notifier"
	"PairSentinel/internal/scheduler"
	"PairSentinel/internal/store"
)

func main() {
	// .env is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("PAIRSENTINEL_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	configureLogging(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	log.Infof("PairSentinel starting: benchmark %s, %d symbols, cycle every %dm",
		cfg.Universe.Benchmark, len(cfg.Universe.Symbols), cfg.Scheduler.IntervalMinutes)

	// Init fetcher
	var fetcher collector.Fetcher
	if os.Getenv("PAIRSENTINEL_MOCK_DATA") == "true" {
		fetcher = &collector.MockFetcher{}
	} else {
		fetcher = collector.NewBinanceFetcher(
			cfg.Exchange.APIKey, cfg.Exchange.APISecret,
			cfg.Exchange.QuoteAsset, cfg.Universe.Benchmark)
	}
	log.Infof("data source: %s", fetcher.Name())

	// Init cache
	var dataCache cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			log.Warningf("redis cache unavailable, falling back to memory: [%v]", err)
			dataCache = cache.NewMemory()
		} else {
			dataCache = rc
			defer rc.Close()
		}
	default:
		dataCache = cache.NewMemory()
	}

	col := collector.NewCollector(fetcher, dataCache, cfg.SeriesTTL(), cfg.SnapshotTTL())

	// Init analyzer
	an, err := analyzer.New(analyzer.Weights{
		Performance: cfg.Analysis.Weights.Performance,
		Momentum:    cfg.Analysis.Weights.Momentum,
		Volatility:  cfg.Analysis.Weights.Volatility,
		Liquidity:   cfg.Analysis.Weights.Liquidity,
		VolumeTrend: cfg.Analysis.Weights.VolumeTrend,
	}, cfg.Analysis.MinLiquidityUSD, cfg.Analysis.VolatilityThreshold, cfg.Analysis.TopPairs)
	if err != nil {
		log.Fatalf("init analyzer: %v", err)
	}

	// Init store
	var st store.Store
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			log.Warningf("init sqlite store failed, using noop: [%v]", err)
			st = store.NewNoop()
		} else {
			st = s
		}
	case "postgres":
		s, err := store.NewPostgresStore(store.PostgresConfig{
			Host:     cfg.Store.Postgres.Host,
			Port:     cfg.Store.Postgres.Port,
			User:     cfg.Store.Postgres.User,
			Password: cfg.Store.Postgres.Password,
			Database: cfg.Store.Postgres.DBName,
			SSLMode:  cfg.Store.Postgres.SSLMode,
		})
		if err != nil {
			log.Warningf("init postgres store failed, using noop: [%v]", err)
			st = store.NewNoop()
		} else {
			st = s
		}
	default:
		st = store.NewNoop()
	}
	defer st.Close()

	// Init notifier
	var alerter notifier.Notifier
	if cfg.Notifier.NtfyTopic != "" {
		alerter = notifier.NewNtfyNotifier(cfg.Notifier.NtfyServer, cfg.Notifier.NtfyTopic, "", st)
		log.Infof("notifier: ntfy topic %s", cfg.Notifier.NtfyTopic)
	} else {
		alerter = notifier.NewLogNotifier(st)
		log.Info("notifier: log-only (no ntfy topic configured)")
	}

	// Init metrics
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	health := metrics.NewHealth()
	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.ListenAddr, health)
		metricsSrv.Start()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, an, st, alerter, m, health, scheduler.Config{
		Benchmark:        cfg.Universe.Benchmark,
		Symbols:          cfg.Universe.Symbols,
		Timeframe:        cfg.Analysis.Timeframe,
		SeriesLimit:      cfg.Analysis.SeriesLimit,
		RSIPeriod:        cfg.Analysis.RSIPeriod,
		ATRPeriod:        cfg.Analysis.ATRPeriod,
		Horizons:         cfg.Analysis.Horizons,
		MaxSpreadPercent: cfg.Analysis.MaxSpreadPercent,
		IntervalMinutes:  cfg.Scheduler.IntervalMinutes,
		SummaryHour:      cfg.Scheduler.SummaryHour,
		CleanupHour:      cfg.Scheduler.MaintenanceHour,
		Retention:        cfg.Retention(),
		Workers:          cfg.Scheduler.Workers,
		FetchTimeout:     cfg.FetchTimeout(),
	})
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()

	if err := alerter.Send(ctx, notifier.FormatStartup()); err != nil {
		log.Warningf("send startup notification: [%v]", err)
	}

	log.Info("PairSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := alerter.Send(shutdownCtx, notifier.FormatShutdown()); err != nil {
		log.Warningf("send shutdown notification: [%v]", err)
	}
	if metricsSrv != nil {
		metricsSrv.Stop(shutdownCtx)
	}
	cancel()

	log.Info("PairSentinel stopped")
}

func configureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
