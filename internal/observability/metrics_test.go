package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountByLabel(t *testing.T) {
	m := NewMetrics()
	m.ObserveIngest("text", "ok", 4)
	m.ObserveIngest("text", "error", 0)
	m.ObserveRetrieval("miss")
	m.ObserveCompletion("", "ok", 2*time.Second)
	m.ObserveGenerationUnit("content", "failed")
	m.PoolStarted("module")
	m.PoolStarted("module")
	m.PoolDone("module")

	if got := testutil.ToFloat64(m.chunksWritten); got != 4 {
		t.Fatalf("chunks written = %v", got)
	}
	if got := testutil.ToFloat64(m.documentsIngested.WithLabelValues("text", "error")); got != 1 {
		t.Fatalf("failed ingests = %v", got)
	}
	if got := testutil.ToFloat64(m.completions.WithLabelValues("none", "ok")); got != 1 {
		t.Fatalf("unlabelled persona not mapped to none: %v", got)
	}
	if got := testutil.ToFloat64(m.poolInflight.WithLabelValues("module")); got != 1 {
		t.Fatalf("inflight = %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveExternalCall("openai", "embeddings", "ok", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `pathforge_external_calls_total{op="embeddings",service="openai",status="ok"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveIngest("text", "ok", 1)
	m.ObserveExternalCall("openai", "responses", "ok", time.Second)
	m.PoolStarted("content")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}

func TestSpansWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "retrieval.query")
	if ctx == nil {
		t.Fatalf("nil context")
	}
	EndSpan(span, errors.New("boom"))
}
