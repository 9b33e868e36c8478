package scheduler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"PairSentinel/internal/analyzer"
	"PairSentinel/internal/calculator"
	"PairSentinel/internal/collector"
	"PairSentinel/internal/metrics"
	"PairSentinel/internal/model"
	"PairSentinel/internal/notifier"
	"PairSentinel/internal/store"
)

// Alert thresholds applied after ranking.
const (
	signalAlertScore = 80.0
	signalAlertMax   = 3
	pairAlertScore   = 60.0
	strongScore      = 70.0
)

// Config carries the orchestration knobs. Values come from the config
// package; zero fields fall back to the defaults below.
type Config struct {
	Benchmark        string
	Symbols          []string
	Timeframe        string
	SeriesLimit      int
	RSIPeriod        int
	ATRPeriod        int
	Horizons         map[string]int
	MaxSpreadPercent float64
	IntervalMinutes  int
	SummaryHour      int
	CleanupHour      int
	Retention        time.Duration
	Workers          int
	FetchTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.Timeframe == "" {
		c.Timeframe = "1h"
	}
	if c.SeriesLimit <= 0 {
		c.SeriesLimit = 200
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
	if c.ATRPeriod <= 0 {
		c.ATRPeriod = 14
	}
	if len(c.Horizons) == 0 {
		c.Horizons = map[string]int{
			model.Horizon1h: 1,
			model.Horizon4h: 4,
			model.Horizon1d: 24,
			model.Horizon1w: 168,
		}
	}
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 15
	}
	if c.Retention <= 0 {
		c.Retention = 30 * 24 * time.Hour
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
}

// Scheduler drives the analysis cycle, the daily summary and the
// retention cleanup off a single cron instance.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Analyzer  *analyzer.Analyzer
	Store     store.Store
	Notifier  notifier.Notifier
	Metrics   *metrics.Metrics
	Health    *metrics.Health
	Config    Config
	Ctx       context.Context

	cycleMu sync.Mutex // non-overlap guard around RunCycle

	lastMu     sync.RWMutex
	lastResult *model.CycleResult
}

// NewScheduler wires the collaborators into a ready-to-register
// scheduler. The cron instance parses six-field specs so tasks can
// fire on exact seconds.
func NewScheduler(ctx context.Context, col *collector.Collector, an *analyzer.Analyzer, st store.Store, not notifier.Notifier, m *metrics.Metrics, h *metrics.Health, cfg Config) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Analyzer:  an,
		Store:     st,
		Notifier:  not,
		Metrics:   m,
		Health:    h,
		Config:    cfg,
		Ctx:       ctx,
	}
}

// RegisterAll registers the periodic analysis cycle, the daily summary
// and the nightly cleanup.
func (s *Scheduler) RegisterAll() error {
	cycleSpec := fmt.Sprintf("0 */%d * * * *", s.Config.IntervalMinutes)
	if _, err := s.Cron.AddFunc(cycleSpec, s.RunCycle); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}

	summarySpec := fmt.Sprintf("0 0 %d * * *", s.Config.SummaryHour)
	if _, err := s.Cron.AddFunc(summarySpec, s.dailySummaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}

	cleanupSpec := fmt.Sprintf("0 0 %d * * *", s.Config.CleanupHour)
	if _, err := s.Cron.AddFunc(cleanupSpec, s.maintenanceTask); err != nil {
		return fmt.Errorf("register maintenance task: %w", err)
	}

	log.WithFields(log.Fields{"component": "scheduler"}).
		Infof("tasks registered: cycle %q, summary %q, cleanup %q", cycleSpec, summarySpec, cleanupSpec)
	return nil
}

// Start launches the cron loop and kicks off an immediate first cycle
// so the bot reports within seconds of boot instead of waiting for the
// next interval boundary.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.WithFields(log.Fields{"component": "scheduler"}).Info("scheduler started")
	go s.RunCycle()
}

// Stop halts the cron loop and waits for an in-flight task to return.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	log.WithFields(log.Fields{"component": "scheduler"}).Info("scheduler stopped")
}

// RunCycle executes one full analysis cycle. A trigger that arrives
// while the previous cycle is still running is skipped, not queued.
func (s *Scheduler) RunCycle() {
	if !s.cycleMu.TryLock() {
		log.WithFields(log.Fields{"component": "scheduler"}).
			Warning("previous cycle still running, skipping this trigger")
		return
	}
	defer s.cycleMu.Unlock()

	s.Metrics.CyclesTotal.Inc()
	start := time.Now()

	result, err := s.runCycle(s.Ctx)
	if err != nil {
		s.Metrics.CyclesFailed.Inc()
		s.Health.SetLastCycle(false)
		log.WithFields(log.Fields{"component": "scheduler"}).Errorf("cycle aborted: [%v]", err)
		s.recordSend(notifier.KindError, s.Notifier.SendCycleError(s.Ctx, s.Config.Benchmark, err))
		return
	}

	if err := s.Store.SaveCycle(s.Ctx, result); err != nil {
		log.WithFields(log.Fields{"component": "scheduler", "cycle_id": result.ID}).
			Errorf("persist cycle: [%v]", err)
	} else {
		s.Metrics.AnalysesPersisted.Add(float64(len(result.Analyses)))
	}

	s.setLastResult(result)
	s.sendAlerts(s.Ctx, result)

	elapsed := time.Since(start)
	s.Metrics.CycleDuration.Observe(elapsed.Seconds())
	s.Metrics.LastAverageScore.Set(averageScore(result.Analyses))
	s.Health.SetLastCycle(true)

	log.WithFields(log.Fields{"component": "scheduler", "cycle_id": result.ID}).
		Infof("cycle finished: %d analyzed, %d skipped, %d pairs in %s",
			len(result.Analyses), len(result.Skipped), len(result.Pairs), elapsed.Round(time.Millisecond))
}

// runCycle assembles one CycleResult: benchmark first, then the
// universe on a bounded worker pool, then ranking and pair matching.
func (s *Scheduler) runCycle(ctx context.Context) (*model.CycleResult, error) {
	started := time.Now()

	benchmark, benchReturns, err := s.analyzeBenchmark(ctx)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", s.Config.Benchmark, err)
	}
	log.WithFields(log.Fields{"component": "scheduler", "symbol": benchmark.Symbol}).
		Debugf("benchmark ready: price=%.2f rsi=%s atr=%s",
			benchmark.Price, floatOrNA(benchmark.RSI), floatOrNA(benchmark.ATRPercent))

	type outcome struct {
		analysis *model.AssetAnalysis
		skip     *model.SkipNote
	}

	jobs := make(chan string)
	results := make(chan outcome)
	var wg sync.WaitGroup

	for w := 0; w < s.Config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				analysis, err := s.analyzeSymbol(ctx, symbol, benchReturns)
				if err != nil {
					s.Metrics.SymbolsSkipped.Inc()
					log.WithFields(log.Fields{"component": "scheduler", "symbol": symbol}).
						Warningf("symbol skipped: [%v]", err)
					results <- outcome{skip: &model.SkipNote{Symbol: symbol, Reason: err.Error()}}
					continue
				}
				results <- outcome{analysis: analysis}
			}
		}()
	}

	go func() {
		for _, symbol := range s.Config.Symbols {
			if symbol == s.Config.Benchmark {
				continue
			}
			jobs <- symbol
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var analyses []*model.AssetAnalysis
	var skipped []model.SkipNote
	for out := range results {
		if out.skip != nil {
			skipped = append(skipped, *out.skip)
			continue
		}
		analyses = append(analyses, out.analysis)
	}

	rankAnalyses(analyses)
	pairs := s.Analyzer.FindBestPairs(analyses)

	return &model.CycleResult{
		ID:         uuid.New().String(),
		Benchmark:  s.Config.Benchmark,
		Analyses:   analyses,
		Pairs:      pairs,
		Skipped:    skipped,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, nil
}

// analyzeBenchmark fetches the benchmark's data and returns its raw
// return vector, which the universe phase subtracts horizon by
// horizon. The benchmark's own analysis carries a unit benchmark price
// and an all-zero relative vector; it is never ranked or persisted.
func (s *Scheduler) analyzeBenchmark(ctx context.Context) (*model.AssetAnalysis, map[string]float64, error) {
	cctx, cancel := context.WithTimeout(ctx, s.Config.FetchTimeout)
	defer cancel()

	symbol := s.Config.Benchmark
	snapshot, err := s.Collector.Snapshot(cctx, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	series, err := s.Collector.Series(cctx, symbol, s.Config.Timeframe, s.Config.SeriesLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch series: %w", err)
	}

	raw, err := calculator.CalculateReturns(series.Candles, s.Config.Horizons)
	if err != nil {
		return nil, nil, fmt.Errorf("compute returns: %w", err)
	}

	analysis := s.assembleAnalysis(symbol, snapshot, series)
	one := 1.0
	analysis.BenchmarkPrice = &one
	zero := make(map[string]float64, len(raw))
	for horizon := range raw {
		zero[horizon] = 0
	}
	analysis.Returns = zero
	return analysis, raw, nil
}

// analyzeSymbol produces a scored AssetAnalysis for one universe
// symbol. Any fetch or compute failure skips just this symbol.
func (s *Scheduler) analyzeSymbol(ctx context.Context, symbol string, benchReturns map[string]float64) (*model.AssetAnalysis, error) {
	cctx, cancel := context.WithTimeout(ctx, s.Config.FetchTimeout)
	defer cancel()

	snapshot, err := s.Collector.Snapshot(cctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	series, err := s.Collector.Series(cctx, symbol, s.Config.Timeframe, s.Config.SeriesLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch series: %w", err)
	}

	raw, err := calculator.CalculateReturns(series.Candles, s.Config.Horizons)
	if err != nil {
		return nil, fmt.Errorf("compute returns: %w", err)
	}

	analysis := s.assembleAnalysis(symbol, snapshot, series)
	relative := make(map[string]float64, len(raw))
	for horizon, r := range raw {
		relative[horizon] = r - benchReturns[horizon]
	}
	analysis.Returns = relative

	analysis.Score = s.Analyzer.Score(analysis)
	analysis.Recommendation = analyzer.Recommend(analysis.Score)
	analysis.Signals = s.Analyzer.DetectSignals(analysis)
	return analysis, nil
}

// assembleAnalysis fills the snapshot and indicator fields shared by
// the benchmark and universe paths. Indicators that cannot be computed
// on the available history stay nil.
func (s *Scheduler) assembleAnalysis(symbol string, snapshot *model.Snapshot, series *model.PriceSeries) *model.AssetAnalysis {
	analysis := &model.AssetAnalysis{
		Symbol:         symbol,
		Price:          snapshot.LastPrice,
		BenchmarkPrice: snapshot.BenchmarkPrice,
		QuoteVolume:    snapshot.QuoteVolume,
		SpreadPercent:  snapshot.SpreadPercent,
		AnalyzedAt:     time.Now(),
	}

	if s.Config.MaxSpreadPercent > 0 && snapshot.SpreadPercent > s.Config.MaxSpreadPercent {
		log.WithFields(log.Fields{"component": "scheduler", "symbol": symbol}).
			Warningf("spread %.4f%% above threshold %.4f%%", snapshot.SpreadPercent, s.Config.MaxSpreadPercent)
	}

	if rsi, err := calculator.CalculateRSI(series.Candles, s.Config.RSIPeriod); err != nil {
		log.WithFields(log.Fields{"component": "scheduler", "symbol": symbol}).
			Debugf("RSI unavailable: [%v]", err)
	} else {
		analysis.RSI = &rsi
	}

	if atr, err := calculator.CalculateATR(series.Candles, s.Config.ATRPeriod); err != nil {
		log.WithFields(log.Fields{"component": "scheduler", "symbol": symbol}).
			Debugf("ATR unavailable: [%v]", err)
	} else {
		pct := calculator.ATRPercent(atr, snapshot.LastPrice)
		analysis.ATRPercent = &pct
	}
	return analysis
}

// rankAnalyses sorts by score descending and assigns dense ranks:
// equal scores share a rank and the next distinct score advances by
// exactly one.
func rankAnalyses(analyses []*model.AssetAnalysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].Score > analyses[j].Score
	})

	rank := 0
	previous := math.Inf(1)
	for _, a := range analyses {
		if a.Score != previous {
			rank++
			previous = a.Score
		}
		a.Rank = rank
	}
}

// sendAlerts pushes individual signals for the strongest assets and a
// pair alert for the top candidate. Notifier failures are logged and
// never fail the cycle.
func (s *Scheduler) sendAlerts(ctx context.Context, result *model.CycleResult) {
	sent := 0
	for _, coin := range result.Analyses {
		if sent == signalAlertMax {
			break
		}
		if coin.Score < signalAlertScore && !strings.HasPrefix(string(coin.Recommendation), "STRONG_") {
			continue
		}
		s.recordSend(notifier.KindSignal, s.Notifier.SendSignal(ctx, coin))
		sent++
	}

	if len(result.Pairs) > 0 && result.Pairs[0].PairScore > pairAlertScore {
		s.recordSend(notifier.KindPair, s.Notifier.SendPairAlert(ctx, result.Pairs[0]))
	}
}

// recordSend logs a notifier failure or counts a delivery.
func (s *Scheduler) recordSend(kind string, err error) {
	if err != nil {
		log.WithFields(log.Fields{"component": "scheduler"}).
			Errorf("send %s notification: [%v]", kind, err)
		return
	}
	s.Metrics.NotificationsSent.WithLabelValues(kind).Inc()
}

// dailySummaryTask sends the market digest built from the most recent
// completed cycle.
func (s *Scheduler) dailySummaryTask() {
	result := s.latestResult()
	if result == nil {
		log.WithFields(log.Fields{"component": "scheduler"}).
			Warning("no completed cycle yet, skipping daily summary")
		return
	}
	s.recordSend(notifier.KindSummary, s.Notifier.SendDailySummary(s.Ctx, BuildSummary(result)))
}

// maintenanceTask prunes stored rows past the retention window.
func (s *Scheduler) maintenanceTask() {
	if err := s.Store.Cleanup(s.Ctx, s.Config.Retention); err != nil {
		log.WithFields(log.Fields{"component": "scheduler"}).
			Errorf("retention cleanup: [%v]", err)
	}
}

// BuildSummary condenses a cycle into the daily digest payload.
// Average score above 60 reads bullish, below 40 bearish; an average
// above 70 flags the market volatile.
func BuildSummary(result *model.CycleResult) *model.MarketSummary {
	var sum float64
	strong := 0
	for _, a := range result.Analyses {
		sum += a.Score
		if a.Score >= strongScore {
			strong++
		}
	}
	average := 0.0
	if len(result.Analyses) > 0 {
		average = sum / float64(len(result.Analyses))
	}

	condition := model.ConditionNeutral
	switch {
	case average > 60:
		condition = model.ConditionBullish
	case average < 40:
		condition = model.ConditionBearish
	}
	volatility := "Stable"
	if average > 70 {
		volatility = "Volatile"
	}

	topAssets := result.Analyses
	if len(topAssets) > 3 {
		topAssets = topAssets[:3]
	}
	topPairs := result.Pairs
	if len(topPairs) > 5 {
		topPairs = topPairs[:5]
	}

	return &model.MarketSummary{
		Condition:     condition,
		Volatility:    volatility,
		AverageScore:  average,
		AnalyzedCount: len(result.Analyses),
		StrongCount:   strong,
		TopAssets:     topAssets,
		TopPairs:      topPairs,
		GeneratedAt:   time.Now(),
	}
}

func (s *Scheduler) setLastResult(result *model.CycleResult) {
	s.lastMu.Lock()
	s.lastResult = result
	s.lastMu.Unlock()
}

func (s *Scheduler) latestResult() *model.CycleResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastResult
}

func averageScore(analyses []*model.AssetAnalysis) float64 {
	if len(analyses) == 0 {
		return 0
	}
	var sum float64
	for _, a := range analyses {
		sum += a.Score
	}
	return sum / float64(len(analyses))
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
