// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port          int           `yaml:"port"`
	APISecret     string        `yaml:"api_secret"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type GraphitiConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"` // extraction model reported in job metadata
	Timeout time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type IngestConfig struct {
	MinDegree       int           `yaml:"min_degree"` // hydration connectivity filter
	Workers         int           `yaml:"workers"`    // extraction worker pool size
	RateLimit       int           `yaml:"rate_limit"` // per-user accepts per window, 0 disables
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
	Graphiti GraphitiConfig `yaml:"graphiti"`
	AI       AIConfig       `yaml:"ai"`
	Redis    RedisConfig    `yaml:"redis"`
	Ingest   IngestConfig   `yaml:"ingest"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = 30 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Neo4j.URI == "" {
		c.Neo4j.URI = "bolt://localhost:7687"
	}
	if c.Neo4j.User == "" {
		c.Neo4j.User = "neo4j"
	}
	if c.Graphiti.Timeout <= 0 {
		// Extraction runs several LLM passes per episode; keep this generous.
		c.Graphiti.Timeout = 5 * time.Minute
	}
	if c.Graphiti.Model == "" {
		c.Graphiti.Model = "gemini-2.5-flash"
	}
	if c.AI.DefaultModel == "" {
		c.AI.DefaultModel = "gemini-2.5-flash"
	}
	if c.AI.MaxOutputTokens <= 0 {
		c.AI.MaxOutputTokens = 4096
	}
	if c.Ingest.MinDegree <= 0 {
		c.Ingest.MinDegree = 2
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.RateLimitWindow <= 0 {
		c.Ingest.RateLimitWindow = time.Minute
	}
}

func (c *Config) validate() error {
	if c.Server.APISecret == "" {
		return errors.New("server.api_secret is required")
	}
	if c.Neo4j.Password == "" {
		return errors.New("neo4j.password is required")
	}
	if c.Graphiti.BaseURL == "" {
		return errors.New("graphiti.base_url is required")
	}
	return nil
}
