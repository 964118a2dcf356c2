package bootstrap

import (
	"context"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/config"
	"github.com/StreetLamp05/glassgov-be/internal/enrichment"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/infra/retry"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

const (
	optionalESMaxAttempts  = 3
	optionalESInitialDelay = 1 * time.Second
	optionalESMaxDelay     = 5 * time.Second
	optionalESMultiplier   = 2.0
)

// SetupEnrichment starts the background enrichment pool, or returns nil when
// enrichment is disabled. The enricher shares matcher with the request path so
// stored rules apply to both.
func SetupEnrichment(
	ctx context.Context,
	cfg *config.Config,
	matcher *classifier.RuleMatcher,
	fallback classifier.SemanticScorer,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) *enrichment.Pool {
	ec := cfg.Enrichment
	if !ec.Enabled {
		logger.Info("Background enrichment disabled")
		return nil
	}

	analyzer, model := enrichmentAnalyzer(cfg, matcher, fallback, logger, tp)
	processor := enrichment.NewProcessor(analyzer, setupSink(ctx, cfg, logger), model)

	return enrichment.NewPool(enrichment.PoolConfig{
		Workers:       ec.Workers,
		QueueSize:     ec.QueueSize,
		RatePerSecond: ec.RatePerSecond,
		Burst:         ec.Burst,
		JobTimeout:    ec.JobTimeout,
	}, processor.Handle, logger, tp)
}

// enrichmentAnalyzer asks the chat model when an OpenAI key is set and
// otherwise re-runs fusion with fallback.
func enrichmentAnalyzer(
	cfg *config.Config,
	matcher *classifier.RuleMatcher,
	fallback classifier.SemanticScorer,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) (*classifier.Engine, string) {
	scorer, model := fallback, "fusion"
	if oc := cfg.Enrichment.OpenAI; oc.APIKey != "" {
		oa := enrichment.NewOpenAIScorer(oc.APIKey, oc.Model, logger)
		scorer, model = oa, oa.Model()
	}
	return newEngine(cfg, matcher, scorer, logger, tp), model
}

// setupSink returns the configured sink, falling back to the log sink when
// Elasticsearch is unreachable.
func setupSink(ctx context.Context, cfg *config.Config, logger infralogger.Logger) enrichment.Sink {
	if cfg.Enrichment.Sink != config.SinkElasticsearch {
		return enrichment.NewLogSink(logger)
	}

	retryCfg := retry.Config{
		MaxAttempts:  optionalESMaxAttempts,
		InitialDelay: optionalESInitialDelay,
		MaxDelay:     optionalESMaxDelay,
		Multiplier:   optionalESMultiplier,
	}
	client, err := enrichment.NewElasticsearchClient(ctx, cfg.Elasticsearch, retryCfg)
	if err != nil {
		logger.Warn("Failed to connect to Elasticsearch", infralogger.Error(err))
		logger.Info("Enrichments will be logged instead of indexed")
		return enrichment.NewLogSink(logger)
	}

	logger.Info("Elasticsearch connected successfully", infralogger.String("index", cfg.Elasticsearch.Index))
	return enrichment.NewElasticsearchSink(client, cfg.Elasticsearch.Index, retryCfg)
}
