// Package config loads the dashboard's options from an optional YAML file and
// TRIVIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/csheth/triviaqotd/internal/trivia"
)

const (
	RefreshDaily  = "daily"
	RefreshHourly = "hourly"
	RefreshCustom = "custom"
)

// Config holds every recognised option.
type Config struct {
	Source                  SourceConfig `mapstructure:"source"`
	RefreshMode             string       `mapstructure:"refresh-mode"`
	CustomRefreshMinutes    int          `mapstructure:"custom-refresh-minutes"`
	FreshnessWindowMs       int64        `mapstructure:"freshness-window-ms"`
	AnswerTimeoutMs         int64        `mapstructure:"answer-timeout-ms"`
	ShowTimer               bool         `mapstructure:"show-timer"`
	AllowManualRefresh      bool         `mapstructure:"allow-manual-refresh"`
	ManualRefreshCooldownMs int64        `mapstructure:"manual-refresh-cooldown-ms"`
	AnimationSpeedMs        int64        `mapstructure:"animation-speed-ms"`
	Log                     LogConfig    `mapstructure:"log"`
	Server                  ServerConfig `mapstructure:"server"`
}

// SourceConfig points at the remote trivia collaborator.
type SourceConfig struct {
	Kind      string `mapstructure:"kind"`
	URL       string `mapstructure:"url"`
	Token     string `mapstructure:"token"`
	TimeoutMs int64  `mapstructure:"timeout-ms"`
}

// LogConfig feeds logger.NewLogger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ServerConfig is only read by the serve command.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", trivia.KindPage)
	v.SetDefault("source.url", "")
	v.SetDefault("source.token", "")
	v.SetDefault("source.timeout-ms", 15000)
	v.SetDefault("refresh-mode", RefreshHourly)
	v.SetDefault("custom-refresh-minutes", 0)
	v.SetDefault("freshness-window-ms", trivia.DefaultFreshness.Milliseconds())
	v.SetDefault("answer-timeout-ms", 10000)
	v.SetDefault("show-timer", true)
	v.SetDefault("allow-manual-refresh", true)
	v.SetDefault("manual-refresh-cooldown-ms", 60000)
	v.SetDefault("animation-speed-ms", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed-origins", []string{"http://localhost:8080"})
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "triviaqotd", "config.yml")
}

// Load reads configPath (or DefaultPath when empty) and overlays the
// environment. Only an explicitly named file has to exist.
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix("TRIVIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	setDefaults(v)

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var configFileNotFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &configFileNotFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return cfg, fmt.Errorf("reading config %s: %w", configPath, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values no component can run with. A missing source URL is
// not one of them; see NewSource.
func (c Config) Validate() error {
	switch c.RefreshMode {
	case RefreshDaily, RefreshHourly:
	case RefreshCustom:
		if c.CustomRefreshMinutes <= 0 {
			return fmt.Errorf("custom-refresh-minutes must be positive when refresh-mode is %q", RefreshCustom)
		}
	default:
		return fmt.Errorf("unknown refresh-mode %q (want daily, hourly or custom)", c.RefreshMode)
	}
	switch strings.ToLower(c.Source.Kind) {
	case "", trivia.KindPage, trivia.KindJSON:
	default:
		return fmt.Errorf("unknown source.kind %q (want page or json)", c.Source.Kind)
	}
	durations := map[string]int64{
		"source.timeout-ms":          c.Source.TimeoutMs,
		"freshness-window-ms":        c.FreshnessWindowMs,
		"answer-timeout-ms":          c.AnswerTimeoutMs,
		"manual-refresh-cooldown-ms": c.ManualRefreshCooldownMs,
		"animation-speed-ms":         c.AnimationSpeedMs,
	}
	for key, value := range durations {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}

// RefreshInterval is the scheduled refresh cadence for the configured mode.
func (c Config) RefreshInterval() time.Duration {
	switch c.RefreshMode {
	case RefreshDaily:
		return 24 * time.Hour
	case RefreshCustom:
		return time.Duration(c.CustomRefreshMinutes) * time.Minute
	default:
		return time.Hour
	}
}

func (c Config) FreshnessWindow() time.Duration { return millis(c.FreshnessWindowMs) }

func (c Config) AnswerTimeout() time.Duration { return millis(c.AnswerTimeoutMs) }

func (c Config) ManualRefreshCooldown() time.Duration { return millis(c.ManualRefreshCooldownMs) }

func (c Config) AnimationSpeed() time.Duration { return millis(c.AnimationSpeedMs) }

// NewSource builds the configured trivia source. Missing settings surface as
// trivia.ErrConfigurationMissing.
func (c Config) NewSource() (trivia.Source, error) {
	return trivia.NewSource(c.Source.Kind, trivia.SourceConfig{
		URL:     c.Source.URL,
		Token:   c.Source.Token,
		Timeout: millis(c.Source.TimeoutMs),
	})
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
