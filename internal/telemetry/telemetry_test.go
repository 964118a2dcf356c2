package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

func newProvider(t *testing.T) *telemetry.Provider {
	t.Helper()
	p := telemetry.NewProviderWithRegistry(prometheus.NewRegistry())
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Metrics)
	return p
}

func TestRecordAnalyze(t *testing.T) {
	p := newProvider(t)
	p.RecordAnalyze(2*time.Millisecond, []string{"crime", "crime", "housing"}, "top_k")

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.RuleHits.WithLabelValues("crime")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.FallbackSelections.WithLabelValues("top_k")), 0)
}

func TestRecordSemanticAndCache(t *testing.T) {
	p := newProvider(t)
	p.RecordSemantic(telemetry.SemanticTimeout, time.Second)
	p.RecordSemantic(telemetry.SemanticTimeout, 0)
	p.RecordCache("hit")

	assert.InDelta(t, 2, testutil.ToFloat64(p.Metrics.SemanticOutcomes.WithLabelValues(telemetry.SemanticTimeout)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.ScoreCache.WithLabelValues("hit")), 0)
}

func TestEnrichmentMetrics(t *testing.T) {
	p := newProvider(t)
	p.SetEnrichmentQueueDepth(4)
	p.IncrementEnrichmentDropped()
	p.RecordEnrichmentJob("ok")

	assert.InDelta(t, 4, testutil.ToFloat64(p.Metrics.EnrichmentQueueDepth), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.EnrichmentDropped), 0)
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *telemetry.Provider
	p.RecordAnalyze(time.Millisecond, []string{"crime"}, "default")
	p.RecordSemantic(telemetry.SemanticOK, time.Millisecond)
	p.RecordDiscover("geo")
	p.RecordSection(time.Millisecond)
	p.IncrementEnrichmentDropped()

	_, span := p.StartSpan(context.Background(), "test", attribute.String("k", "v"))
	span.End()
}
