// Package config loads the process configuration file.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/configutil"
	"github.com/anshu200710/ai-agent-sub000/pkg/dialogue"
	"github.com/anshu200710/ai-agent-sub000/pkg/logging"
	"github.com/anshu200710/ai-agent-sub000/pkg/outbox"
	"github.com/anshu200710/ai-agent-sub000/pkg/server"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports/console"
	"github.com/anshu200710/ai-agent-sub000/pkg/transports/twilio"
	"github.com/spf13/viper"
)

type Config struct {
	Environment  string          `mapstructure:"environment"`
	LogLevel     string          `mapstructure:"log_level"`
	LogFormat    string          `mapstructure:"log_format"`
	LogFile      LogFileConfig   `mapstructure:"log_file"`
	TaxonomyPath string          `mapstructure:"taxonomy_path"`
	Server       server.Config   `mapstructure:"server"`
	Dialogue     dialogue.Config `mapstructure:"dialogue"`
	Backend      backend.Config  `mapstructure:"backend"`
	Session      SessionConfig   `mapstructure:"session"`
	Outbox       ProviderConfig  `mapstructure:"outbox"`
	Transports   ProviderConfig  `mapstructure:"transports"`
	Console      console.Config  `mapstructure:"console"`
	Metrics      MetricsConfig   `mapstructure:"metrics"`
	Privacy      PrivacyConfig   `mapstructure:"privacy"`
	Timeline     TimelineConfig  `mapstructure:"timeline"`
}

type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ProviderConfig selects an implementation and carries its free-form settings.
type ProviderConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type SessionConfig struct {
	MaxSessions     int `mapstructure:"max_sessions"`
	TTLMS           int `mapstructure:"ttl_ms"`
	MaxIdleMS       int `mapstructure:"max_idle_ms"`
	EvictIntervalMS int `mapstructure:"evict_interval_ms"`
}

func (s SessionConfig) TTL() time.Duration { return configutil.Millis(s.TTLMS, 30*time.Minute) }

func (s SessionConfig) MaxIdle() time.Duration { return configutil.Millis(s.MaxIdleMS, 15*time.Minute) }

func (s SessionConfig) EvictInterval() time.Duration {
	return configutil.Millis(s.EvictIntervalMS, time.Minute)
}

type MetricsConfig struct {
	Prometheus  bool    `mapstructure:"prometheus"`
	LogEvents   bool    `mapstructure:"log_events"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	AsyncBuffer int     `mapstructure:"async_buffer"`
}

// TimelineConfig enables the per-call transition audit files.
type TimelineConfig struct {
	Dir         string `mapstructure:"dir"`
	RetentionMS int    `mapstructure:"retention_ms"`
}

func (t TimelineConfig) Retention() time.Duration {
	return configutil.Millis(t.RetentionMS, 7*24*time.Hour)
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("dialogue.language", dialogue.LangEnglish)
	v.SetDefault("dialogue.silence_max", 3)
	v.SetDefault("dialogue.max_rejections", 2)
	v.SetDefault("dialogue.work_start", "08:00")
	v.SetDefault("dialogue.work_end", "20:00")
	v.SetDefault("dialogue.default_from", "10:00")
	v.SetDefault("dialogue.timezone", "Asia/Kolkata")
	v.SetDefault("dialogue.submit_timeout", "90s")
	v.SetDefault("backend.timeout", "20s")
	v.SetDefault("backend.submit_attempts", 3)
	v.SetDefault("backend.submit_delay", "2s")
	v.SetDefault("backend.breaker_threshold", 5)
	v.SetDefault("backend.breaker_cooldown", "30s")
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("session.ttl_ms", 30*60*1000)
	v.SetDefault("session.max_idle_ms", 15*60*1000)
	v.SetDefault("session.evict_interval_ms", 60*1000)
	v.SetDefault("outbox.provider", "none")
	v.SetDefault("transports.provider", "twilio")
	v.SetDefault("console.enabled", false)
	v.SetDefault("console.path", "/console")
	v.SetDefault("metrics.prometheus", true)
	v.SetDefault("metrics.log_events", false)
	v.SetDefault("metrics.sample_rate", 1.0)
	v.SetDefault("metrics.async_buffer", 1024)
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("timeline.dir", "")
	v.SetDefault("timeline.retention_ms", 7*24*60*60*1000)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := configutil.RequireString(c.Backend.BaseURL, "backend.base_url"); err != nil {
		return err
	}
	if err := configutil.RequireString(c.Dialogue.AgentNumber, "dialogue.agent_number"); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.Transports.Provider)) {
	case "twilio", "none", "":
	default:
		return fmt.Errorf("transports.provider %q is not supported", c.Transports.Provider)
	}
	if c.Metrics.SampleRate < 0 || c.Metrics.SampleRate > 1 {
		return fmt.Errorf("metrics.sample_rate must be within [0,1]")
	}
	if _, err := c.OutboxConfig(); err != nil {
		return err
	}
	if _, err := c.TwilioConfig(); err != nil {
		return err
	}
	return nil
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile.Path,
		MaxSizeMB:  c.LogFile.MaxSizeMB,
		MaxBackups: c.LogFile.MaxBackups,
		MaxAgeDays: c.LogFile.MaxAgeDays,
	}
}

// OutboxConfig decodes outbox.settings for the selected provider.
func (c Config) OutboxConfig() (outbox.Config, error) {
	out := outbox.Config{Provider: strings.ToLower(strings.TrimSpace(c.Outbox.Provider))}
	var schema configutil.Schema
	switch out.Provider {
	case "redis":
		schema = configutil.Schema{Required: []string{"redis_url"}, Optional: []string{"key"}}
	default:
		schema = configutil.Schema{AllowUnknown: true}
	}
	if err := configutil.DecodeValidated("outbox.settings", c.Outbox.Settings, schema, &out); err != nil {
		return outbox.Config{}, err
	}
	out.Provider = strings.ToLower(strings.TrimSpace(c.Outbox.Provider))
	return out, nil
}

// TwilioConfig decodes transports.settings. The server address is shared with
// the HTTP server so webhook URLs printed at startup match the listener.
func (c Config) TwilioConfig() (twilio.Config, error) {
	var out twilio.Config
	if strings.EqualFold(strings.TrimSpace(c.Transports.Provider), "twilio") {
		schema := configutil.Schema{Optional: twilio.SettingsSchema}
		if err := configutil.DecodeValidated("transports.settings", c.Transports.Settings, schema, &out); err != nil {
			return twilio.Config{}, err
		}
	}
	if out.ServerAddr == "" {
		out.ServerAddr = c.Server.Addr
	}
	return out, nil
}

func expandEnvStrings(cfg *Config) {
	expandValue(reflect.ValueOf(cfg))
	cfg.Outbox.Settings = expandSettings(cfg.Outbox.Settings)
	cfg.Transports.Settings = expandSettings(cfg.Transports.Settings)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = expandAny(v)
		}
		return out
	default:
		return v
	}
}

func expandValue(v reflect.Value) {
	if !v.IsValid() {
		return
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		expandValue(v.Elem())
		return
	}
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			expandValue(v.Field(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(os.ExpandEnv(v.String()))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			expandValue(v.Index(i))
		}
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String && v.Type().Elem().Kind() == reflect.String {
			for _, key := range v.MapKeys() {
				val := v.MapIndex(key)
				expanded := os.ExpandEnv(val.String())
				v.SetMapIndex(key, reflect.ValueOf(expanded))
			}
		}
	}
}
