package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/infra/retry"
)

// DefaultIndex receives enrichment documents.
const DefaultIndex = "glassgov_enrichment"

// LogSink writes enrichments to the log.
type LogSink struct {
	logger infralogger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger infralogger.Logger) *LogSink {
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &LogSink{logger: logger}
}

// Store logs e at info level.
func (s *LogSink) Store(_ context.Context, e Enrichment) error {
	fields := []infralogger.Field{
		infralogger.String("job_id", e.JobID),
		infralogger.String("model", e.Model),
	}
	if e.Result != nil {
		fields = append(fields,
			infralogger.String("primary_category", string(e.Result.PrimaryLabel)),
			infralogger.Strings("tags", e.Result.Tags),
			infralogger.Float64("confidence", e.Result.Confidence),
		)
	}
	s.logger.Info("Enrichment completed", fields...)
	return nil
}

// ElasticsearchConfig holds Elasticsearch connection configuration.
type ElasticsearchConfig struct {
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	APIKey   string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	Index    string `env:"ELASTICSEARCH_INDEX"    yaml:"index"`
}

// NewElasticsearchClient creates a client and verifies it with a retried ping.
func NewElasticsearchClient(ctx context.Context, cfg ElasticsearchConfig, retryCfg retry.Config) (*es.Client, error) {
	clientConfig := es.Config{Addresses: []string{normalizeURL(cfg.URL)}}
	switch {
	case cfg.APIKey != "":
		clientConfig.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	err = retry.Do(ctx, retryCfg, func(ctx context.Context) error {
		res, pingErr := client.Ping(client.Ping.WithContext(ctx))
		if pingErr != nil {
			return pingErr
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return fmt.Errorf("ping returned %s", res.Status())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return client, nil
}

func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// ElasticsearchSink indexes enrichments by job id.
type ElasticsearchSink struct {
	client *es.Client
	index  string
	retry  retry.Config
}

// NewElasticsearchSink creates a sink writing to index (DefaultIndex when empty).
func NewElasticsearchSink(client *es.Client, index string, retryCfg retry.Config) *ElasticsearchSink {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchSink{client: client, index: index, retry: retryCfg}
}

// Store indexes e, retrying transport errors, 429s and 5xx responses.
func (s *ElasticsearchSink) Store(ctx context.Context, e Enrichment) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment: %w", err)
	}

	return retry.Do(ctx, s.retry, func(ctx context.Context) error {
		res, indexErr := s.client.Index(
			s.index,
			bytes.NewReader(doc),
			s.client.Index.WithContext(ctx),
			s.client.Index.WithDocumentID(e.JobID),
		)
		if indexErr != nil {
			return fmt.Errorf("failed to index enrichment: %w", indexErr)
		}
		defer func() { _ = res.Body.Close() }()

		if res.IsError() {
			err := fmt.Errorf("error indexing enrichment: %s", res.String())
			if res.StatusCode < http.StatusInternalServerError && res.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	})
}
