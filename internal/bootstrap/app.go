package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StreetLamp05/glassgov-be/internal/api"
	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/config"
	"github.com/StreetLamp05/glassgov-be/internal/discover"
	"github.com/StreetLamp05/glassgov-be/internal/enrichment"
	"github.com/StreetLamp05/glassgov-be/internal/infra/ginserver"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

const healthCheckTimeout = 2 * time.Second

// App holds every long-lived component of the service.
type App struct {
	Config     *config.Config
	Logger     infralogger.Logger
	Telemetry  *telemetry.Provider
	Records    *RecordComponents
	Semantic   *SemanticComponents
	Classifier *classifier.Engine
	Matcher    *classifier.RuleMatcher
	Refresher  *classifier.RuleRefresher
	Enrichment *enrichment.Pool
	Discover   *discover.Engine
}

// NewApp wires the service. Only a failing required record source is fatal;
// optional dependencies degrade with a warning.
func NewApp(ctx context.Context, cfg *config.Config, logger infralogger.Logger, tp *telemetry.Provider) (*App, error) {
	records, err := SetupRecords(cfg, logger)
	if err != nil {
		return nil, err
	}

	sem := SetupSemantic(cfg, logger, tp)
	engine, matcher := NewClassifier(cfg, sem.Scorer, logger, tp)

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Telemetry:  tp,
		Records:    records,
		Semantic:   sem,
		Classifier: engine,
		Matcher:    matcher,
	}

	if records.Rules != nil && cfg.Classification.RulesFromDB {
		app.Refresher = LoadStoredRules(ctx, cfg, records.Rules, matcher, logger)
	}

	var enqueuer discover.Enqueuer
	if pool := SetupEnrichment(ctx, cfg, matcher, sem.Scorer, logger, tp); pool != nil {
		app.Enrichment = pool
		enqueuer = pool
	}

	app.Discover = discover.NewEngine(records.Records, engine, enqueuer, discover.Config{
		DefaultPerCategory: cfg.Discover.DefaultPerCategory,
		MaxPerCategory:     cfg.Discover.MaxPerCategory,
		SectionConcurrency: cfg.Discover.SectionConcurrency,
	}, logger, tp)

	return app, nil
}

// Handler builds the API handler. Rule endpoints exist only with Postgres;
// writes reach the live matcher only when stored rules are enabled.
func (a *App) Handler() *api.Handler {
	var (
		store    api.RuleStore
		reloader api.RuleReloader
	)
	if a.Records.Rules != nil {
		store = a.Records.Rules
	}
	if a.Refresher != nil {
		reloader = a.Refresher
	}
	return api.NewHandler(a.Classifier, a.Matcher, a.Discover, store, reloader, ClassifierOptions(a.Config), a.Logger)
}

// NewServer builds the HTTP server with health checks for each dependency.
func (a *App) NewServer() *ginserver.Server {
	handler := a.Handler()
	svc := a.Config.Service

	b := ginserver.NewServerBuilder(svc.Name, svc.Port).
		WithLogger(a.Logger).
		WithDebug(svc.Debug).
		WithVersion(svc.Version).
		WithCORSOrigins(svc.CORSOrigins).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, handler, a.Telemetry.Handler())
		})

	if a.Records.ping != nil {
		b.WithHealthCheck("database", ginserver.PingChecker(withTimeout(a.Records.ping), ginserver.HealthStatusUnhealthy))
	}
	if a.Semantic.Redis != nil {
		redisClient := a.Semantic.Redis
		b.WithHealthCheck("redis", ginserver.PingChecker(withTimeout(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}), ginserver.HealthStatusDegraded))
	}
	if a.Semantic.Loader != nil {
		loader := a.Semantic.Loader
		b.WithHealthCheck("semantic", ginserver.PingChecker(withTimeout(func(ctx context.Context) error {
			_, err := loader.Load(ctx)
			return err
		}), ginserver.HealthStatusDegraded))
	}
	return b.Build()
}

// Serve runs the HTTP server and the rule refresher until ctx is done or a
// shutdown signal arrives, then drains enrichment and closes resources.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.Refresher != nil {
		go a.Refresher.Run(ctx)
	}

	err := a.NewServer().Run(ctx)
	cancel()
	return errors.Join(err, a.Close())
}

// Close drains enrichment and releases connections.
func (a *App) Close() error {
	var errs []error
	if a.Enrichment != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Service.ShutdownTimeout)
		errs = append(errs, a.Enrichment.Shutdown(ctx))
		cancel()
	}
	if a.Semantic.Redis != nil {
		errs = append(errs, a.Semantic.Redis.Close())
	}
	errs = append(errs, a.Records.Close())
	return errors.Join(errs...)
}

func withTimeout(fn func(ctx context.Context) error) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()
		return fn(ctx)
	}
}
