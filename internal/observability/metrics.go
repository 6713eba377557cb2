package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	documentsIngested *prometheus.CounterVec
	chunksWritten     prometheus.Counter
	retrievalQueries  *prometheus.CounterVec
	completions       *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	generationUnits   *prometheus.CounterVec
	poolInflight      *prometheus.GaugeVec
	externalCalls     *prometheus.CounterVec
	externalLatency   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		documentsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathforge_documents_ingested_total",
			Help: "Documents passed through ingestion, by document type and outcome.",
		}, []string{"type", "status"}),
		chunksWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "pathforge_chunks_written_total",
			Help: "Chunks persisted by ingestion.",
		}),
		retrievalQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathforge_retrieval_queries_total",
			Help: "Retrieval queries by outcome (hit, miss, error).",
		}, []string{"outcome"}),
		completions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathforge_completion_requests_total",
			Help: "Completion gateway turns by persona and outcome.",
		}, []string{"persona", "status"}),
		completionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathforge_completion_duration_seconds",
			Help:    "Completion gateway turn latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"persona"}),
		generationUnits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathforge_generation_units_total",
			Help: "Generated modules and contents by outcome.",
		}, []string{"kind", "status"}),
		poolInflight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pathforge_pool_inflight",
			Help: "Units currently running in a generation worker pool.",
		}, []string{"pool"}),
		externalCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathforge_external_calls_total",
			Help: "Requests to external model and speech services.",
		}, []string{"service", "op", "status"}),
		externalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathforge_external_call_duration_seconds",
			Help:    "External request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "op"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveIngest(docType, status string, chunks int) {
	if m == nil {
		return
	}
	m.documentsIngested.WithLabelValues(docType, status).Inc()
	if chunks > 0 {
		m.chunksWritten.Add(float64(chunks))
	}
}

func (m *Metrics) ObserveRetrieval(outcome string) {
	if m == nil {
		return
	}
	m.retrievalQueries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCompletion(persona, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if persona == "" {
		persona = "none"
	}
	m.completions.WithLabelValues(persona, status).Inc()
	m.completionLatency.WithLabelValues(persona).Observe(dur.Seconds())
}

func (m *Metrics) ObserveGenerationUnit(kind, status string) {
	if m == nil {
		return
	}
	m.generationUnits.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) PoolStarted(pool string) {
	if m == nil {
		return
	}
	m.poolInflight.WithLabelValues(pool).Inc()
}

func (m *Metrics) PoolDone(pool string) {
	if m == nil {
		return
	}
	m.poolInflight.WithLabelValues(pool).Dec()
}

// ObserveExternalCall satisfies openai.Observer.
func (m *Metrics) ObserveExternalCall(service, op, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.externalCalls.WithLabelValues(service, op, status).Inc()
	m.externalLatency.WithLabelValues(service, op).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
	log.Info("metrics server listening", "addr", addr)
}
