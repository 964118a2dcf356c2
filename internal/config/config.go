// Package config holds the GlassGov service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/cache"
	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/enrichment"
	infraconfig "github.com/StreetLamp05/glassgov-be/internal/infra/config"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// Default configuration values.
const (
	defaultServiceName         = "glassgov"
	defaultServiceVersion      = "1.0.0"
	defaultServicePort         = 8000
	defaultDBHost              = "localhost"
	defaultDBPort              = "5432"
	defaultDBUser              = "postgres"
	defaultDBName              = "glassgov"
	defaultDBSSLMode           = "disable"
	defaultRedisAddress        = "localhost:6379"
	defaultCacheTTL            = 24 * time.Hour
	defaultLogLevel            = "info"
	defaultLogFormat           = "json"
	defaultThreshold           = 0.50
	defaultTopK                = 3
	defaultSemanticURL         = "http://localhost:8090"
	defaultSemanticTimeout     = 3 * time.Second
	defaultBreakerFailures     = 5
	defaultBreakerOpenTimeout  = 30 * time.Second
	defaultRulesRefresh        = 5 * time.Minute
	defaultEnrichmentWorkers   = 2
	defaultEnrichmentQueue     = 100
	defaultEnrichmentRate      = 2.0
	defaultEnrichmentBurst     = 4
	defaultEnrichmentTimeout   = 30 * time.Second
	defaultPerCategory         = 5
	defaultMaxPerCategory      = 50
	defaultSectionConcurrency  = 4
	defaultElasticsearchURL    = "http://localhost:9200"
	defaultShutdownGracePeriod = 10 * time.Second
)

// Enrichment sinks.
const (
	SinkLog           = "log"
	SinkElasticsearch = "elasticsearch"
)

// ErrUnknownSink is returned by Validate for an unsupported enrichment sink.
var ErrUnknownSink = errors.New("unknown enrichment sink")

// Config holds all configuration for the GlassGov service.
type Config struct {
	Service        ServiceConfig                  `yaml:"service"`
	Database       DatabaseConfig                 `yaml:"database"`
	Redis          cache.Config                   `yaml:"redis"`
	Elasticsearch  enrichment.ElasticsearchConfig `yaml:"elasticsearch"`
	Logging        infralogger.Config             `yaml:"logging"`
	Classification ClassificationConfig           `yaml:"classification"`
	Enrichment     EnrichmentConfig               `yaml:"enrichment"`
	Discover       DiscoverConfig                 `yaml:"discover"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"GLASSGOV_PORT"  yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"      yaml:"debug"`
	CORSOrigins     []string      `env:"CORS_ORIGINS"   yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the record source. When Postgres is disabled the
// service serves records from FixturePath (or nothing).
type DatabaseConfig struct {
	database.Config `yaml:",inline"`

	Enabled     bool   `env:"POSTGRES_ENABLED" yaml:"enabled"`
	FixturePath string `env:"RECORDS_FIXTURE"  yaml:"fixture_path"`
}

// ClassificationConfig holds analyze settings.
type ClassificationConfig struct {
	Threshold    float64        `env:"CLASSIFIER_THRESHOLD" yaml:"threshold"`
	TopK         int            `env:"CLASSIFIER_TOP_K"     yaml:"top_k"`
	Debug        bool           `env:"NER_DEBUG"            yaml:"debug"`
	ExtraPlaces  []string       `yaml:"extra_places"`
	RulesFromDB  bool           `env:"RULES_FROM_DB"        yaml:"rules_from_db"`
	RulesRefresh time.Duration  `yaml:"rules_refresh"`
	Semantic     SemanticConfig `yaml:"semantic"`
}

// SemanticConfig configures the zero-shot sidecar.
type SemanticConfig struct {
	Enabled          bool          `env:"SEMANTIC_ENABLED" yaml:"enabled"`
	URL              string        `env:"SEMANTIC_URL"     yaml:"url"`
	Timeout          time.Duration `env:"SEMANTIC_TIMEOUT" yaml:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	OpenTimeout      time.Duration `yaml:"open_timeout"`
}

// EnrichmentConfig configures the background enrichment pool.
type EnrichmentConfig struct {
	Enabled       bool          `env:"ENRICHMENT_ENABLED" yaml:"enabled"`
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	JobTimeout    time.Duration `yaml:"job_timeout"`
	Sink          string        `env:"ENRICHMENT_SINK"    yaml:"sink"`
	OpenAI        OpenAIConfig  `yaml:"openai"`
}

// OpenAIConfig selects the chat model used for enrichment.
type OpenAIConfig struct {
	APIKey string `env:"OPENAI_API_KEY" yaml:"api_key"`
	Model  string `env:"OPENAI_MODEL"   yaml:"model"`
}

// DiscoverConfig bounds section sizes.
type DiscoverConfig struct {
	DefaultPerCategory int `yaml:"default_per_category"`
	MaxPerCategory     int `yaml:"max_per_category"`
	SectionConcurrency int `yaml:"section_concurrency"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	checks := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateLogLevel("logging.level", c.Logging.Level),
		infraconfig.ValidateUnitInterval("classification.threshold", c.Classification.Threshold),
		infraconfig.ValidatePositive("classification.top_k", c.Classification.TopK),
		infraconfig.ValidatePositive("discover.default_per_category", c.Discover.DefaultPerCategory),
		infraconfig.ValidatePositive("discover.max_per_category", c.Discover.MaxPerCategory),
	}
	if c.Enrichment.Enabled {
		checks = append(checks, infraconfig.ValidatePositive("enrichment.workers", c.Enrichment.Workers))
	}
	switch c.Enrichment.Sink {
	case SinkLog, SinkElasticsearch:
	default:
		checks = append(checks, fmt.Errorf("enrichment.sink: %w: %q", ErrUnknownSink, c.Enrichment.Sink))
	}
	return errors.Join(checks...)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
	setClassificationDefaults(&cfg.Classification)
	setEnrichmentDefaults(&cfg.Enrichment)
	setDiscoverDefaults(&cfg.Discover)
	if cfg.Elasticsearch.URL == "" {
		cfg.Elasticsearch.URL = defaultElasticsearchURL
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = enrichment.DefaultIndex
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownGracePeriod
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == "" {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.DBName == "" {
		d.DBName = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
}

func setRedisDefaults(r *cache.Config) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.TTL == 0 {
		r.TTL = defaultCacheTTL
	}
}

func setLoggingDefaults(l *infralogger.Config) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setClassificationDefaults(c *ClassificationConfig) {
	// 0 is indistinguishable from unset; a zero threshold is not configurable.
	if c.Threshold == 0 {
		c.Threshold = defaultThreshold
	}
	if c.TopK == 0 {
		c.TopK = defaultTopK
	}
	if c.RulesRefresh == 0 {
		c.RulesRefresh = defaultRulesRefresh
	}
	if c.Semantic.URL == "" {
		c.Semantic.URL = defaultSemanticURL
	}
	if c.Semantic.Timeout == 0 {
		c.Semantic.Timeout = defaultSemanticTimeout
	}
	if c.Semantic.FailureThreshold == 0 {
		c.Semantic.FailureThreshold = defaultBreakerFailures
	}
	if c.Semantic.OpenTimeout == 0 {
		c.Semantic.OpenTimeout = defaultBreakerOpenTimeout
	}
}

func setEnrichmentDefaults(e *EnrichmentConfig) {
	if e.Workers == 0 {
		e.Workers = defaultEnrichmentWorkers
	}
	if e.QueueSize == 0 {
		e.QueueSize = defaultEnrichmentQueue
	}
	if e.RatePerSecond == 0 {
		e.RatePerSecond = defaultEnrichmentRate
	}
	if e.Burst == 0 {
		e.Burst = defaultEnrichmentBurst
	}
	if e.JobTimeout == 0 {
		e.JobTimeout = defaultEnrichmentTimeout
	}
	if e.Sink == "" {
		e.Sink = SinkLog
	}
	if e.OpenAI.Model == "" {
		e.OpenAI.Model = enrichment.DefaultOpenAIModel
	}
}

func setDiscoverDefaults(d *DiscoverConfig) {
	if d.DefaultPerCategory == 0 {
		d.DefaultPerCategory = defaultPerCategory
	}
	if d.MaxPerCategory == 0 {
		d.MaxPerCategory = defaultMaxPerCategory
	}
	if d.SectionConcurrency == 0 {
		d.SectionConcurrency = defaultSectionConcurrency
	}
}
