package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "glassgov", cfg.Service.Name)
	assert.Equal(t, 8000, cfg.Service.Port)
	assert.InDelta(t, 0.5, cfg.Classification.Threshold, 0)
	assert.Equal(t, 3, cfg.Classification.TopK)
	assert.Equal(t, 3*time.Second, cfg.Classification.Semantic.Timeout)
	assert.Equal(t, 5, cfg.Discover.DefaultPerCategory)
	assert.Equal(t, 50, cfg.Discover.MaxPerCategory)
	assert.Equal(t, SinkLog, cfg.Enrichment.Sink)
	assert.Equal(t, "glassgov_enrichment", cfg.Elasticsearch.Index)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Database.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 9100
database:
  enabled: true
  host: db.internal
  name: civic
classification:
  threshold: 0.4
  top_k: 2
  semantic:
    enabled: true
    url: http://zeroshot:8090
discover:
  max_per_category: 20
`)
	t.Setenv("CLASSIFIER_TOP_K", "4")
	t.Setenv("SEMANTIC_TIMEOUT", "750ms")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "civic", cfg.Database.DBName)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.InDelta(t, 0.4, cfg.Classification.Threshold, 1e-9)
	assert.Equal(t, 4, cfg.Classification.TopK, "environment wins over YAML")
	assert.True(t, cfg.Classification.Semantic.Enabled)
	assert.Equal(t, "http://zeroshot:8090", cfg.Classification.Semantic.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.Classification.Semantic.Timeout)
	assert.Equal(t, 20, cfg.Discover.MaxPerCategory)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"threshold above one", func(c *Config) { c.Classification.Threshold = 1.2 }, "classification.threshold"},
		{"top_k zero", func(c *Config) { c.Classification.TopK = 0 }, "classification.top_k"},
		{"bad port", func(c *Config) { c.Service.Port = 70000 }, "service.port"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"unknown sink", func(c *Config) { c.Enrichment.Sink = "kafka" }, "enrichment.sink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
