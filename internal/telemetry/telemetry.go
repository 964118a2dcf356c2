// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for
// the analyze and discover paths. A nil *Provider is valid and records nothing.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "glassgov"

// Semantic scorer outcomes.
const (
	SemanticOK          = "ok"
	SemanticDisabled    = "disabled"
	SemanticTimeout     = "timeout"
	SemanticError       = "error"
	SemanticCircuitOpen = "circuit_open"
	SemanticCached      = "cached"
)

// Metrics holds every GlassGov collector.
type Metrics struct {
	AnalyzeDuration    prometheus.Histogram
	RuleHits           *prometheus.CounterVec
	FallbackSelections *prometheus.CounterVec

	SemanticOutcomes *prometheus.CounterVec
	SemanticDuration prometheus.Histogram
	ScoreCache       *prometheus.CounterVec

	DiscoverRequests *prometheus.CounterVec
	SectionDuration  prometheus.Histogram

	EnrichmentQueueDepth prometheus.Gauge
	EnrichmentDropped    prometheus.Counter
	EnrichmentJobs       *prometheus.CounterVec
}

// Provider bundles the tracer and metrics.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics

	gatherer prometheus.Gatherer
}

// NewProvider registers metrics on the default Prometheus registry.
func NewProvider() *Provider {
	return NewProviderWithRegistry(prometheus.DefaultRegisterer)
}

// NewProviderWithRegistry registers metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewProviderWithRegistry(reg prometheus.Registerer) *Provider {
	p := &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		gatherer: prometheus.DefaultGatherer,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		p.gatherer = g
	}
	return p
}

// Handler serves the provider's registry for GET /metrics.
func (p *Provider) Handler() http.Handler {
	if p == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}

	m.AnalyzeDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "glassgov_analyze_duration_seconds",
		Help:    "Time to analyze one text, semantic scoring included",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	m.RuleHits = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_rule_hits_total",
		Help: "Rule matcher hits by label",
	}, []string{"label"})
	m.FallbackSelections = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_fallback_selections_total",
		Help: "Analyses that fell back to top_k or the default label",
	}, []string{"kind"})

	m.SemanticOutcomes = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_semantic_outcomes_total",
		Help: "Semantic scorer calls by outcome",
	}, []string{"outcome"})
	m.SemanticDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "glassgov_semantic_duration_seconds",
		Help:    "Semantic sidecar round-trip time",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})
	m.ScoreCache = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_score_cache_total",
		Help: "Semantic score cache lookups by result",
	}, []string{"result"})

	m.DiscoverRequests = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_discover_requests_total",
		Help: "Discover calls by branch (categories, message, geo)",
	}, []string{"branch"})
	m.SectionDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "glassgov_section_build_duration_seconds",
		Help:    "Time to build one discover section",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	m.EnrichmentQueueDepth = f.NewGauge(prometheus.GaugeOpts{
		Name: "glassgov_enrichment_queue_depth",
		Help: "Enrichment jobs waiting for a worker",
	})
	m.EnrichmentDropped = f.NewCounter(prometheus.CounterOpts{
		Name: "glassgov_enrichment_dropped_total",
		Help: "Enrichment jobs dropped because the queue was full",
	})
	m.EnrichmentJobs = f.NewCounterVec(prometheus.CounterOpts{
		Name: "glassgov_enrichment_jobs_total",
		Help: "Finished enrichment jobs by status",
	}, []string{"status"})

	return m
}

// RecordAnalyze records one analyze call.
func (p *Provider) RecordAnalyze(duration time.Duration, ruleLabels []string, fallback string) {
	if p == nil {
		return
	}
	p.Metrics.AnalyzeDuration.Observe(duration.Seconds())
	for _, l := range ruleLabels {
		p.Metrics.RuleHits.WithLabelValues(l).Inc()
	}
	if fallback != "" {
		p.Metrics.FallbackSelections.WithLabelValues(fallback).Inc()
	}
}

// RecordSemantic records one semantic scorer outcome.
func (p *Provider) RecordSemantic(outcome string, duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.SemanticOutcomes.WithLabelValues(outcome).Inc()
	if duration > 0 {
		p.Metrics.SemanticDuration.Observe(duration.Seconds())
	}
}

// RecordCache records a score cache lookup: hit, miss or error.
func (p *Provider) RecordCache(result string) {
	if p == nil {
		return
	}
	p.Metrics.ScoreCache.WithLabelValues(result).Inc()
}

// RecordDiscover records which discover branch ran.
func (p *Provider) RecordDiscover(branch string) {
	if p == nil {
		return
	}
	p.Metrics.DiscoverRequests.WithLabelValues(branch).Inc()
}

// RecordSection records one section build.
func (p *Provider) RecordSection(duration time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.SectionDuration.Observe(duration.Seconds())
}

// SetEnrichmentQueueDepth reports pending enrichment jobs.
func (p *Provider) SetEnrichmentQueueDepth(depth int) {
	if p == nil {
		return
	}
	p.Metrics.EnrichmentQueueDepth.Set(float64(depth))
}

// IncrementEnrichmentDropped counts a job rejected by a full queue.
func (p *Provider) IncrementEnrichmentDropped() {
	if p == nil {
		return
	}
	p.Metrics.EnrichmentDropped.Inc()
}

// RecordEnrichmentJob counts a finished job: ok, error or panic.
func (p *Provider) RecordEnrichmentJob(status string) {
	if p == nil {
		return
	}
	p.Metrics.EnrichmentJobs.WithLabelValues(status).Inc()
}

// StartSpan starts a span; callers must End it. A nil provider returns a
// no-op span from the global tracer.
//
//nolint:spancheck // caller ends the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(serviceName)
	if p != nil && p.Tracer != nil {
		tracer = p.Tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
