package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Postgres: PostgresConfig{DSN: "postgres://localhost/games"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"negative rate limit", func(c *Config) { c.HTTP.RateLimit = -1 }, "http.rate_limit"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"missing dsn", func(c *Config) { c.Postgres.DSN = "" }, "postgres.dsn"},
		{"negative cache ttl", func(c *Config) { c.Embedding.Cache.TTLSec = -5 }, "embedding.cache.ttl_sec"},
		{"unknown metric", func(c *Config) { c.Search.DistanceMetric = "hamming" }, "search.distance_metric"},
		{"l2 metric", func(c *Config) { c.Search.DistanceMetric = "l2" }, "search.distance_metric"},
		{"ip metric", func(c *Config) { c.Search.DistanceMetric = "ip" }, "search.distance_metric"},
		{"unknown algorithm", func(c *Config) { c.Search.Algorithm = "ivf" }, "search.algorithm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.RateWindowSec != 60 {
		t.Errorf("expected RateWindowSec=60, got %d", cfg.HTTP.RateWindowSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Postgres.MaxConns != 10 {
		t.Errorf("expected MaxConns=10, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected embedding defaults: %q/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	if cfg.Search.KeyPrefix != "gamesim:" {
		t.Errorf("expected KeyPrefix='gamesim:', got %q", cfg.Search.KeyPrefix)
	}
	if cfg.Search.HNSWM != 32 || cfg.Search.HNSWEFConstruct != 400 {
		t.Errorf("unexpected HNSW defaults: %d/%d", cfg.Search.HNSWM, cfg.Search.HNSWEFConstruct)
	}
	if cfg.Search.DistanceMetric != "cosine" || cfg.Search.Algorithm != "hnsw" {
		t.Errorf("unexpected index defaults: %q/%q", cfg.Search.DistanceMetric, cfg.Search.Algorithm)
	}
	if cfg.MCP.Name != "gamesim" {
		t.Errorf("expected MCP name gamesim, got %q", cfg.MCP.Name)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{KeyPrefix: "custom:", HNSWM: 16, Algorithm: "flat"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Search.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Search.HNSWM)
	}
	if cfg.Search.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Search.KeyPrefix)
	}
	if vc := cfg.VectorConfig(); vc.Algorithm != "flat" {
		t.Errorf("expected algorithm flat, got %q", vc.Algorithm)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("GAMESIM_TEST_DSN", "postgres://db/games")
	data := []byte(`
http:
  port: ${GAMESIM_TEST_PORT:-9090}
database:
  addrs: ["localhost:6379"]
postgres:
  dsn: ${GAMESIM_TEST_DSN}
embedding:
  query_instruction: "Represent this game description: "
  cache:
    enabled: true
    ttl_sec: 3600
auth:
  api_keys: ["k1"]
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port from default, got %d", cfg.HTTP.Port)
	}
	if cfg.Postgres.DSN != "postgres://db/games" {
		t.Errorf("expected DSN from env, got %q", cfg.Postgres.DSN)
	}
	if !cfg.Embedding.Cache.Enabled || cfg.Embedding.Cache.TTLSec != 3600 {
		t.Errorf("unexpected cache config: %+v", cfg.Embedding.Cache)
	}
	if cfg.VectorConfig().QueryInstruction != "Represent this game description: " {
		t.Errorf("unexpected instruction %q", cfg.VectorConfig().QueryInstruction)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Errorf("expected 1 api key, got %v", cfg.Auth.APIKeys)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error")
	}
}
