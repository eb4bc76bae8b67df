// Package vaani assembles the text pipeline for a Hinglish voice agent:
// configuration loading, provider construction, and the processor chain.
package vaani

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/harunnryd/vaani/pkg/errorsx"
	"github.com/harunnryd/vaani/pkg/pipeline"
)

type Config struct {
	Pipeline     pipeline.Config    `mapstructure:"pipeline"`
	Vendors      VendorsConfig      `mapstructure:"vendors"`
	Replacements ReplacementsConfig `mapstructure:"replacements"`
	Register     RegisterConfig     `mapstructure:"register"`
	Gate         GateConfig         `mapstructure:"gate"`
	Segment      SegmentConfig      `mapstructure:"segment"`
	Privacy      PrivacyConfig      `mapstructure:"privacy"`
	Environment  string             `mapstructure:"environment"`
	LogLevel     string             `mapstructure:"log_level"`
	LogFormat    string             `mapstructure:"log_format"`
	BasePrompt   string             `mapstructure:"base_prompt"`
}

type VendorConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type VendorsConfig struct {
	LLM VendorConfig `mapstructure:"llm"`
}

type ReplacementsConfig struct {
	// Abbreviations rewrite case-sensitively on word boundaries; Terms
	// rewrite case-insensitively as substrings. Both merge over the
	// built-in tables.
	Abbreviations map[string]string `mapstructure:"abbreviations"`
	Terms         map[string]string `mapstructure:"terms"`
}

type RegisterConfig struct {
	Markers         []string `mapstructure:"markers"`
	FallbackPhrases []string `mapstructure:"fallback_phrases"`
	MaxDrifts       int      `mapstructure:"max_drifts"`
	MinLength       int      `mapstructure:"min_length"`
}

type GateConfig struct {
	SuspicionThreshold float64 `mapstructure:"suspicion_threshold"`
}

type SegmentConfig struct {
	MinLen int `mapstructure:"min_len"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("pipeline.controlcapacity", 16)
	v.SetDefault("pipeline.textcapacity", 256)
	v.SetDefault("register.max_drifts", 2)
	v.SetDefault("register.min_length", 12)
	v.SetDefault("gate.suspicion_threshold", 0.7)
	v.SetDefault("segment.min_len", 8)
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("read config: %w", err), errorsx.ReasonConfigLoad)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("unmarshal config: %w", err), errorsx.ReasonConfigLoad)
	}
	return cfg, nil
}
