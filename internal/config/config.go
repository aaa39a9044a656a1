// Package config loads process configuration from defaults, an optional YAML
// file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Ollama    OllamaConfig    `koanf:"ollama"`
	Recommend RecommendConfig `koanf:"recommend"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"` // 0 disables
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type SpotifyConfig struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	BaseURL           string        `koanf:"base_url"`
	TokenURL          string        `koanf:"token_url"`
	Market            string        `koanf:"market"`
	CallTimeout       time.Duration `koanf:"call_timeout"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBackoff      time.Duration `koanf:"retry_backoff"`
	TokenRetries      int           `koanf:"token_retries"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// OllamaConfig configures the optional generative and sentiment collaborator.
type OllamaConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Host           string        `koanf:"host"`
	Model          string        `koanf:"model"`
	SentimentModel string        `koanf:"sentiment_model"`
	Timeout        time.Duration `koanf:"timeout"`
}

type RecommendConfig struct {
	RequestTimeout       time.Duration `koanf:"request_timeout"`
	AIBudget             int           `koanf:"ai_budget"`
	BaselineBudget       int           `koanf:"baseline_budget"`
	FeatureWorkers       int           `koanf:"feature_workers"`
	FeatureQueue         int           `koanf:"feature_queue"`
	ExplainConcurrency   int           `koanf:"explain_concurrency"`
	SentimentConcurrency int           `koanf:"sentiment_concurrency"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Spotify: SpotifyConfig{
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			Market:            "US",
			CallTimeout:       5 * time.Second,
			MaxRetries:        3,
			RetryBackoff:      500 * time.Millisecond,
			TokenRetries:      3,
			RequestsPerSecond: 20,
			Burst:             10,
		},
		Ollama: OllamaConfig{
			Enabled:        false,
			Host:           "http://localhost:11434",
			Model:          "llama3.2:3b",
			SentimentModel: "llama3.2:3b",
			Timeout:        20 * time.Second,
		},
		Recommend: RecommendConfig{
			RequestTimeout:       25 * time.Second,
			AIBudget:             9,
			BaselineBudget:       10,
			FeatureWorkers:       8,
			FeatureQueue:         256,
			ExplainConcurrency:   4,
			SentimentConcurrency: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports configuration that would make every request fail.
func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required"))
	}
	if c.Spotify.BaseURL == "" || c.Spotify.TokenURL == "" {
		errs = append(errs, errors.New("spotify base_url and token_url must be set"))
	}
	if c.Recommend.AIBudget < 1 || c.Recommend.BaselineBudget < 1 {
		errs = append(errs, fmt.Errorf("recommendation budgets must be positive (ai=%d, baseline=%d)",
			c.Recommend.AIBudget, c.Recommend.BaselineBudget))
	}
	if c.Recommend.FeatureWorkers < 1 {
		errs = append(errs, fmt.Errorf("recommend.feature_workers must be positive, got %d", c.Recommend.FeatureWorkers))
	}
	if c.Ollama.Enabled && c.Ollama.Host == "" {
		errs = append(errs, errors.New("ollama.host is required when ollama is enabled"))
	}
	return errors.Join(errs...)
}
