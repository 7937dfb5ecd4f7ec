// Package config layers environment, a YAML file, and built-in defaults
// into the diff/tap configuration this harness runs with, using
// spf13/viper — grounded on jnd-labs-aiblackbox's internal/config/config.go
// (SetDefault, ReadInConfig-is-optional, Unmarshal-then-Validate shape),
// adapted from that proxy's server/endpoint settings to tap and diff
// config.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/tap"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// Config is the full set of runtime-tunable settings for a recording or
// replay run.
type Config struct {
	MaxBodySize         int      `mapstructure:"max_body_size"`
	IgnorePatterns      []string `mapstructure:"ignore_patterns"`
	CaptureRequestBody  bool     `mapstructure:"capture_request_body"`
	CaptureResponseBody bool     `mapstructure:"capture_response_body"`

	ApiDiff    ApiDiffSection    `mapstructure:"api_diff"`
	DomDiff    DomDiffSection    `mapstructure:"dom_diff"`
	VisualDiff VisualDiffSection `mapstructure:"visual_diff"`

	StorePath string `mapstructure:"store_path"`
}

// ApiDiffSection mirrors types.ApiDiffConfig for YAML/env binding.
type ApiDiffSection struct {
	IgnorePaths           []string `mapstructure:"ignore_paths"`
	CompareRequestBodies  bool     `mapstructure:"compare_request_bodies"`
	CompareResponseBodies bool     `mapstructure:"compare_response_bodies"`
	CompareHeaders        bool     `mapstructure:"compare_headers"`
	IgnoreHeaders         []string `mapstructure:"ignore_headers"`
	Strict                bool     `mapstructure:"strict"`
}

// DomDiffSection mirrors types.DomDiffConfig for YAML/env binding.
type DomDiffSection struct {
	IgnoreAttributes []string `mapstructure:"ignore_attributes"`
	IgnoreSelectors  []string `mapstructure:"ignore_selectors"`
	CompareText      bool     `mapstructure:"compare_text"`
	CompareStyles    bool     `mapstructure:"compare_styles"`
	StyleProperties  []string `mapstructure:"style_properties"`
	IgnoreWhitespace bool     `mapstructure:"ignore_whitespace"`
	MaxDepth         int      `mapstructure:"max_depth"`
}

// VisualDiffSection mirrors types.VisualDiffConfig for YAML/env binding.
type VisualDiffSection struct {
	Threshold        float64 `mapstructure:"threshold"`
	DiffThreshold    float64 `mapstructure:"diff_threshold"`
	IncludeAntiAlias bool    `mapstructure:"include_anti_alias"`
	Alpha            float64 `mapstructure:"alpha"`
}

// Load reads configuration from gasoline.yaml (current dir or /etc/gasoline)
// and GASOLINE_-prefixed environment variables, falling back to the spec's
// documented defaults when neither supplies a value.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("gasoline")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/gasoline")

	v.SetEnvPrefix("GASOLINE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := tap.DefaultConfig()
	v.SetDefault("max_body_size", d.MaxBodySize)
	v.SetDefault("ignore_patterns", d.IgnorePatterns)
	v.SetDefault("capture_request_body", d.CaptureRequestBody)
	v.SetDefault("capture_response_body", d.CaptureResponseBody)

	api := types.DefaultAPIDiffConfig()
	v.SetDefault("api_diff.compare_request_bodies", api.CompareRequestBodies)
	v.SetDefault("api_diff.compare_response_bodies", api.CompareResponseBodies)
	v.SetDefault("api_diff.compare_headers", api.CompareHeaders)
	v.SetDefault("api_diff.ignore_headers", api.IgnoreHeaders)
	v.SetDefault("api_diff.strict", api.Strict)

	dom := types.DefaultDomDiffConfig()
	v.SetDefault("dom_diff.compare_text", dom.CompareText)
	v.SetDefault("dom_diff.compare_styles", dom.CompareStyles)
	v.SetDefault("dom_diff.ignore_whitespace", dom.IgnoreWhitespace)
	v.SetDefault("dom_diff.max_depth", dom.MaxDepth)

	visual := types.DefaultVisualDiffConfig()
	v.SetDefault("visual_diff.threshold", visual.Threshold)
	v.SetDefault("visual_diff.diff_threshold", visual.DiffThreshold)
	v.SetDefault("visual_diff.include_anti_alias", visual.IncludeAntiAlias)
	v.SetDefault("visual_diff.alpha", visual.Alpha)

	v.SetDefault("store_path", "./gasoline-baselines")
}

// Validate enforces the ConfigError checks this harness requires before a
// recording or replay run starts.
func (c *Config) Validate() error {
	if c.MaxBodySize < 0 {
		return types.NewConfigError("max_body_size must be >= 0, got %d", c.MaxBodySize)
	}
	if c.VisualDiff.Threshold < 0 || c.VisualDiff.Threshold > 1 {
		return types.NewConfigError("visual_diff.threshold must be in [0,1], got %v", c.VisualDiff.Threshold)
	}
	if c.VisualDiff.DiffThreshold < 0 || c.VisualDiff.DiffThreshold > 100 {
		return types.NewConfigError("visual_diff.diff_threshold must be in [0,100], got %v", c.VisualDiff.DiffThreshold)
	}
	if c.StorePath == "" {
		return types.NewConfigError("store_path must not be empty")
	}
	return nil
}

// TapConfig projects the shared tap.Config fields out of the loaded config.
func (c *Config) TapConfig() tap.Config {
	return tap.Config{
		IgnorePatterns:      c.IgnorePatterns,
		CaptureRequestBody:  c.CaptureRequestBody,
		CaptureResponseBody: c.CaptureResponseBody,
		MaxBodySize:         c.MaxBodySize,
	}
}

// ApiDiffConfig projects the api_diff section into types.ApiDiffConfig.
func (c *Config) ApiDiffConfig() types.ApiDiffConfig {
	return types.ApiDiffConfig{
		IgnorePaths:           c.ApiDiff.IgnorePaths,
		CompareRequestBodies:  c.ApiDiff.CompareRequestBodies,
		CompareResponseBodies: c.ApiDiff.CompareResponseBodies,
		CompareHeaders:        c.ApiDiff.CompareHeaders,
		IgnoreHeaders:         c.ApiDiff.IgnoreHeaders,
		Strict:                c.ApiDiff.Strict,
	}
}

// DomDiffConfig projects the dom_diff section into types.DomDiffConfig.
func (c *Config) DomDiffConfig() types.DomDiffConfig {
	return types.DomDiffConfig{
		IgnoreAttributes: c.DomDiff.IgnoreAttributes,
		IgnoreSelectors:  c.DomDiff.IgnoreSelectors,
		CompareText:      c.DomDiff.CompareText,
		CompareStyles:    c.DomDiff.CompareStyles,
		StyleProperties:  c.DomDiff.StyleProperties,
		IgnoreWhitespace: c.DomDiff.IgnoreWhitespace,
		MaxDepth:         c.DomDiff.MaxDepth,
	}
}

// VisualDiffConfig projects the visual_diff section into types.VisualDiffConfig.
func (c *Config) VisualDiffConfig() types.VisualDiffConfig {
	base := types.DefaultVisualDiffConfig()
	return types.VisualDiffConfig{
		Threshold:        c.VisualDiff.Threshold,
		DiffThreshold:    c.VisualDiff.DiffThreshold,
		IncludeAntiAlias: c.VisualDiff.IncludeAntiAlias,
		Alpha:            c.VisualDiff.Alpha,
		DiffColor:        base.DiffColor,
	}
}
