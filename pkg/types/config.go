// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperlens/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// BackendConfig holds settings for the remote analysis backend.
type BackendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the backend root (e.g. "http://localhost:8000").
	// An empty BaseURL disables all backend calls.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts on rate limiting (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// AnalysisConfig holds settings for the page analysis pipeline.
type AnalysisConfig struct {
	// Workers bounds concurrent backend explain calls (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// ExplainTop is the number of most complex equations sent for
	// explanation (default 5, 0 disables explanations).
	ExplainTop int `json:"explain_top" yaml:"explain_top" mapstructure:"explain_top"`

	// MinComplexity skips explanations for equations scoring below it.
	MinComplexity int `json:"min_complexity" yaml:"min_complexity" mapstructure:"min_complexity"`

	// CacheSize is the number of parsed equations memoized (default 512).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig holds settings for the analysis history store.
type HistoryConfig struct {
	// HistoryDir is the directory containing history.db.
	HistoryDir string `json:"history_dir" yaml:"history_dir" mapstructure:"history_dir"`

	// MaxResults is the default limit for listings and searches (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Backend  BackendConfig  `json:"backend" yaml:"backend" mapstructure:"backend"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	History  HistoryConfig  `json:"history" yaml:"history" mapstructure:"history"`
}

// DefaultAppConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Backend: BackendConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "paperlens/0.1",
			},
			MaxRetries: 3,
		},
		Analysis: AnalysisConfig{
			Workers:       4,
			ExplainTop:    5,
			MinComplexity: 1,
			CacheSize:     512,
		},
		History: HistoryConfig{
			HistoryDir: "history",
			MaxResults: 20,
		},
	}
}
