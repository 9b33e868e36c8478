package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the Prometheus instruments for the analysis pipeline.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	CyclesFailed      prometheus.Counter
	SymbolsSkipped    prometheus.Counter
	CycleDuration     prometheus.Histogram
	LastAverageScore  prometheus.Gauge
	AnalysesPersisted prometheus.Counter
	NotificationsSent *prometheus.CounterVec // labels: kind
}

// NewMetrics builds all instruments and registers them on reg.
// Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_cycles_total",
			Help: "Analysis cycles started",
		}),
		CyclesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_cycles_failed_total",
			Help: "Analysis cycles aborted on benchmark failure",
		}),
		SymbolsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_symbols_skipped_total",
			Help: "Symbols dropped from a cycle after fetch or computation failure",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairsentinel_cycle_duration_seconds",
			Help:    "Wall time of one full analysis cycle",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastAverageScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pairsentinel_last_average_score",
			Help: "Average composite score of the most recent cycle",
		}),
		AnalysesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairsentinel_analyses_persisted_total",
			Help: "Asset analyses written to the store",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pairsentinel_notifications_sent_total",
			Help: "Notifications delivered (by kind)",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.CyclesFailed,
		m.SymbolsSkipped,
		m.CycleDuration,
		m.LastAverageScore,
		m.AnalysesPersisted,
		m.NotificationsSent,
	)

	return m
}

// Health tracks liveness of the analysis loop for the /healthz endpoint.
type Health struct {
	mu          sync.RWMutex
	startedAt   time.Time
	lastCycleAt time.Time
	lastCycleOK bool
}

func NewHealth() *Health {
	return &Health{startedAt: time.Now()}
}

// SetLastCycle records the outcome of the most recent cycle.
func (h *Health) SetLastCycle(ok bool) {
	h.mu.Lock()
	h.lastCycleAt = time.Now()
	h.lastCycleOK = ok
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "ok"
	code := http.StatusOK
	if !h.lastCycleAt.IsZero() && !h.lastCycleOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	lastCycle := ""
	if !h.lastCycleAt.IsZero() {
		lastCycle = h.lastCycleAt.Format(time.RFC3339)
	}

	resp := struct {
		Status      string `json:"status"`
		Uptime      string `json:"uptime"`
		LastCycleAt string `json:"last_cycle_at,omitempty"`
		LastCycleOK bool   `json:"last_cycle_ok"`
	}{
		Status:      status,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		LastCycleAt: lastCycle,
		LastCycleOK: h.lastCycleOK,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(resp)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *Health) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.WithFields(log.Fields{"component": "metrics"}).Infof("server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.WithFields(log.Fields{"component": "metrics"}).Errorf("server error: [%v]", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
