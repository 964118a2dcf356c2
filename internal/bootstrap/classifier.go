package bootstrap

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/StreetLamp05/glassgov-be/internal/cache"
	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/config"
	"github.com/StreetLamp05/glassgov-be/internal/infra/breaker"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/infra/retry"
	"github.com/StreetLamp05/glassgov-be/internal/semantic"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// SemanticComponents holds the semantic scorer and what backs it.
type SemanticComponents struct {
	Scorer semantic.Scorer
	Loader *semantic.Loader
	Redis  *redis.Client
}

// SetupScoreCache connects the optional Redis score cache. Connection
// failures are logged and caching is skipped.
func SetupScoreCache(cfg *config.Config, logger infralogger.Logger, tp *telemetry.Provider) (*cache.ScoreCache, *redis.Client) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, score cache disabled", infralogger.Error(err))
		return nil, nil
	}
	logger.Info("Redis score cache connected", infralogger.String("address", cfg.Redis.Address))
	return cache.NewScoreCache(client, cfg.Redis.TTL, logger, tp), client
}

// SetupSemantic builds the sidecar scorer, or a disabled one.
func SetupSemantic(cfg *config.Config, logger infralogger.Logger, tp *telemetry.Provider) *SemanticComponents {
	sc := cfg.Classification.Semantic
	if !sc.Enabled {
		logger.Info("Semantic classifier disabled")
		return &SemanticComponents{Scorer: semantic.Disabled{}}
	}

	scoreCache, redisClient := SetupScoreCache(cfg, logger, tp)
	client := &http.Client{}
	loader := semantic.NewLoader(sc.URL, client, retry.DefaultConfig(), logger)
	sidecarCfg := semantic.SidecarConfig{
		Timeout: sc.Timeout,
		Client:  client,
		Breaker: breaker.New(breaker.Config{
			FailureThreshold: sc.FailureThreshold,
			OpenTimeout:      sc.OpenTimeout,
			OnStateChange: func(from, to breaker.State) {
				logger.Warn("Semantic circuit state changed",
					infralogger.String("from", from.String()),
					infralogger.String("to", to.String()),
				)
			},
		}),
	}
	if scoreCache != nil {
		sidecarCfg.Cache = scoreCache
	}

	logger.Info("Semantic classifier enabled",
		infralogger.String("url", sc.URL),
		infralogger.Duration("timeout", sc.Timeout),
	)
	return &SemanticComponents{
		Scorer: semantic.NewSidecar(loader, sidecarCfg, logger, tp),
		Loader: loader,
		Redis:  redisClient,
	}
}

// ClassifierOptions maps configuration to analyze defaults.
func ClassifierOptions(cfg *config.Config) classifier.Options {
	return classifier.Options{
		Threshold: cfg.Classification.Threshold,
		TopK:      cfg.Classification.TopK,
		Debug:     cfg.Classification.Debug,
	}
}

// NewClassifier builds the fusion engine around scorer.
func NewClassifier(
	cfg *config.Config,
	scorer classifier.SemanticScorer,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) (*classifier.Engine, *classifier.RuleMatcher) {
	matcher := classifier.NewRuleMatcher(nil, logger)
	return newEngine(cfg, matcher, scorer, logger, tp), matcher
}

// newEngine builds a fusion engine over an existing rule matcher.
func newEngine(
	cfg *config.Config,
	matcher *classifier.RuleMatcher,
	scorer classifier.SemanticScorer,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) *classifier.Engine {
	entities := classifier.NewEntityExtractor(cfg.Classification.ExtraPlaces...)
	return classifier.NewEngine(matcher, scorer, entities, logger, tp)
}

// LoadStoredRules installs stored rules once and returns the refresher.
// Listing failures are logged; the built-in lexicon still applies.
func LoadStoredRules(
	ctx context.Context,
	cfg *config.Config,
	source classifier.RuleSource,
	matcher *classifier.RuleMatcher,
	logger infralogger.Logger,
) *classifier.RuleRefresher {
	refresher := classifier.NewRuleRefresher(source, matcher, cfg.Classification.RulesRefresh, logger)
	if err := refresher.Reload(ctx); err != nil {
		logger.Warn("Failed to load stored rules", infralogger.Error(err))
	}
	return refresher
}
