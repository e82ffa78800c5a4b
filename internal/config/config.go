// Package config handles loading and validating the speakgenie configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nadzzz/speakgenie/internal/voice"
)

// Config is the root configuration for the speakgenie daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Tutor      TutorConfig      `mapstructure:"tutor"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Voices     VoicesConfig     `mapstructure:"voices"`
	Languages  []LanguageConfig `mapstructure:"languages"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int  `mapstructure:"health_port"`
	Metrics    bool `mapstructure:"metrics"` // serve /metrics on the health port
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TutorConfig selects and configures the LLM backend that writes replies.
type TutorConfig struct {
	Backend string        `mapstructure:"backend"` // "openai" or "local"
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Local   LocalConfig   `mapstructure:"local"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	CompletionModel string `mapstructure:"completion_model"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	LLMEndpoint string `mapstructure:"llm_endpoint"`
	LLMModel    string `mapstructure:"llm_model"` // Ollama model name (e.g., "llama3.2:1b")
}

// BreakerConfig tunes the circuit breaker in front of the tutor backend.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"` // consecutive failures before opening
	OpenFor     time.Duration `mapstructure:"open_for"`
	Timeout     time.Duration `mapstructure:"timeout"` // per-request deadline
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // "piper"
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Piper           PiperConfig   `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps primary language
// subtags to individual Wyoming TCP endpoints. Endpoint is the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`  // Default Wyoming TCP endpoint (host:port)
	Endpoints map[string]string `mapstructure:"endpoints"` // language subtag -> Wyoming TCP endpoint
	Voices    []VoiceConfig     `mapstructure:"voices"`    // voices announced when the server cannot be asked
}

// VoiceConfig declares one Piper voice model.
type VoiceConfig struct {
	ID     string `mapstructure:"id"` // Piper model name, e.g. "hi_IN-pratham-medium"
	Name   string `mapstructure:"name"`
	Locale string `mapstructure:"locale"`
}

// SpeechConfig holds the default speaking parameters.
type SpeechConfig struct {
	Rate        float64       `mapstructure:"rate"`
	Pitch       float64       `mapstructure:"pitch"`
	Volume      float64       `mapstructure:"volume"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"` // how long a chat reply waits for its speech
}

// VoicesConfig holds the locale resolution policy.
//
// Substitutes is a list rather than a map because viper lowercases map keys
// and locale tags are case-sensitive here.
type VoicesConfig struct {
	Families       map[string][]string `mapstructure:"families"`
	Substitutes    []SubstituteConfig  `mapstructure:"substitutes"`
	Universal      string              `mapstructure:"universal"`
	FallbackLocale string              `mapstructure:"fallback_locale"`
	Order          []string            `mapstructure:"order"`
}

// SubstituteConfig maps a locale to the language spoken in its place.
type SubstituteConfig struct {
	Locale   string `mapstructure:"locale"`
	Language string `mapstructure:"language"`
}

// LanguageConfig overrides one entry of the built-in language catalog.
type LanguageConfig struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	NativeName  string `mapstructure:"native_name"`
	Locale      string `mapstructure:"locale"`
	Description string `mapstructure:"description"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./speakgenie.yaml, ./configs/speakgenie.yaml, /etc/speakgenie/speakgenie.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.metrics", true)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("tutor.backend", "openai")
	v.SetDefault("tutor.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("tutor.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("tutor.openai.completion_model", "gpt-4o-mini")
	v.SetDefault("tutor.local.llm_endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("tutor.local.llm_model", "llama3")
	v.SetDefault("tutor.breaker.max_failures", 3)
	v.SetDefault("tutor.breaker.open_for", "30s")
	v.SetDefault("tutor.breaker.timeout", "20s")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.refresh_interval", "1m")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("speech.rate", 1.0)
	v.SetDefault("speech.pitch", 1.1)
	v.SetDefault("speech.volume", 1.0)
	v.SetDefault("speech.wait_timeout", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("speakgenie")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/speakgenie")
	}

	// Environment variables: SPEAKGENIE_SERVER_HEALTH_PORT, SPEAKGENIE_TUTOR_BACKEND, etc.
	v.SetEnvPrefix("SPEAKGENIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Tutor.OpenAI.APIKey = resolveEnvRef(cfg.Tutor.OpenAI.APIKey)
	if strings.HasPrefix(cfg.Tutor.OpenAI.APIKey, "${") {
		cfg.Tutor.OpenAI.APIKey = ""
	}

	if _, err := cfg.VoicePolicy(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// VoicePolicy builds the catalog resolution policy. Unset fields keep the
// built-in defaults.
func (c *Config) VoicePolicy() (voice.Policy, error) {
	p := voice.DefaultPolicy()
	vc := c.Voices
	if len(vc.Families) > 0 {
		p.Families = vc.Families
	}
	if len(vc.Substitutes) > 0 {
		p.Substitutes = make(map[string]string, len(vc.Substitutes))
		for _, s := range vc.Substitutes {
			p.Substitutes[s.Locale] = s.Language
		}
	}
	if vc.Universal != "" {
		p.Universal = vc.Universal
	}
	if vc.FallbackLocale != "" {
		p.FallbackLocale = vc.FallbackLocale
	}
	if len(vc.Order) > 0 {
		p.Order = vc.Order
	}
	if err := p.Validate(); err != nil {
		return voice.Policy{}, fmt.Errorf("voices policy: %w", err)
	}
	return p, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
