package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nadzzz/speakgenie/internal/voice"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speakgenie.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transports.HTTP.Port != 8080 || cfg.Transports.GRPC.Port != 50051 {
		t.Errorf("ports = %d/%d", cfg.Transports.HTTP.Port, cfg.Transports.GRPC.Port)
	}
	if cfg.Speech.Rate != 1.0 || cfg.Speech.Pitch != 1.1 || cfg.Speech.Volume != 1.0 {
		t.Errorf("speech defaults = %+v", cfg.Speech)
	}
	if cfg.Speech.WaitTimeout != 30*time.Second {
		t.Errorf("wait timeout = %v", cfg.Speech.WaitTimeout)
	}
	if cfg.Tutor.Breaker.MaxFailures != 3 || cfg.Tutor.Breaker.OpenFor != 30*time.Second {
		t.Errorf("breaker = %+v", cfg.Tutor.Breaker)
	}
	if cfg.Tutor.OpenAI.APIKey != "" {
		t.Errorf("unresolved api key = %q, want empty", cfg.Tutor.OpenAI.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadResolvesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load(writeConfig(t, "tutor:\n  backend: openai\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tutor.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.Tutor.OpenAI.APIKey)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPEAKGENIE_TRANSPORTS_HTTP_PORT", "9090")
	cfg, err := Load(writeConfig(t, "logging:\n  format: text\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transports.HTTP.Port != 9090 {
		t.Errorf("http port = %d, want 9090", cfg.Transports.HTTP.Port)
	}
}

func TestVoicePolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
voices:
  substitutes:
    - locale: bn-IN
      language: hi
  universal: hi
  order: [exact, substitute, any]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := cfg.VoicePolicy()
	if err != nil {
		t.Fatalf("VoicePolicy: %v", err)
	}
	if sub, ok := p.Substitute("bn-IN"); !ok || sub != "hi" {
		t.Errorf("Substitute(bn-IN) = %q, %v", sub, ok)
	}
	if _, ok := p.Substitute("mr-IN"); ok {
		t.Error("configured substitutes should replace the defaults")
	}
	if p.Universal != "hi" || p.FallbackLocale != "en-US" {
		t.Errorf("universal/fallback = %q/%q", p.Universal, p.FallbackLocale)
	}
	if len(p.Families) == 0 {
		t.Error("families should keep their defaults")
	}
}

func TestVoicePolicyRejectsUnknownRule(t *testing.T) {
	_, err := Load(writeConfig(t, "voices:\n  order: [exact, telepathy]\n"))
	if err == nil {
		t.Fatal("expected error for unknown rule")
	}
}

func TestVoicePolicyDefaults(t *testing.T) {
	var cfg Config
	p, err := cfg.VoicePolicy()
	if err != nil {
		t.Fatal(err)
	}
	want := voice.DefaultPolicy()
	if p.Universal != want.Universal || len(p.Substitutes) != len(want.Substitutes) {
		t.Errorf("policy = %+v, want defaults", p)
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("SPEAKGENIE_TEST_SECRET", "hunter2")
	tests := []struct {
		in, want string
	}{
		{"${SPEAKGENIE_TEST_SECRET}", "hunter2"},
		{"${SPEAKGENIE_TEST_MISSING}", "${SPEAKGENIE_TEST_MISSING}"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolveEnvRef(tt.in); got != tt.want {
			t.Errorf("resolveEnvRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
