// Speakgenie is a voice tutor daemon that lets children practice
// conversations in Indian languages and hear the tutor's replies spoken
// with the best available voice.
//
// Usage:
//
//	speakgenie [serve] [--config /path/to/speakgenie.yaml]
//	speakgenie say --lang hi-IN "नमस्ते"
//	speakgenie voices
//	speakgenie languages
//
// @title       speakgenie API
// @version     1.0
// @description Voice tutor for children: practice conversations with spoken replies in ten Indian languages.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/nadzzz/speakgenie/docs"
	"github.com/nadzzz/speakgenie/internal/audio"
	"github.com/nadzzz/speakgenie/internal/config"
	"github.com/nadzzz/speakgenie/internal/conversation"
	"github.com/nadzzz/speakgenie/internal/health"
	"github.com/nadzzz/speakgenie/internal/language"
	"github.com/nadzzz/speakgenie/internal/observe"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/speech/synth"
	"github.com/nadzzz/speakgenie/internal/store"
	"github.com/nadzzz/speakgenie/internal/transport"
	grpctransport "github.com/nadzzz/speakgenie/internal/transport/grpc"
	httptransport "github.com/nadzzz/speakgenie/internal/transport/http"
	"github.com/nadzzz/speakgenie/internal/tts/piper"
	"github.com/nadzzz/speakgenie/internal/tutor"
	localtutor "github.com/nadzzz/speakgenie/internal/tutor/local"
	openaitutor "github.com/nadzzz/speakgenie/internal/tutor/openai"
	"github.com/nadzzz/speakgenie/internal/voice"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configFile string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:           "speakgenie",
		Short:         "Voice tutor daemon for children's language practice",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			var err error
			if cfg, err = config.Load(configFile); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			config.SetupLogging(cfg.Logging)
			return nil
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the tutor daemon (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/speakgenie.yaml)")
	rootCmd.AddCommand(serveCmd, sayCmd, voicesCmd, languagesCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("speakgenie failed", "error", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	slog.Info("speakgenie starting", "version", version)

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "speakgenie", ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("initialising metrics: %w", err)
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()
	metrics := observe.DefaultMetrics()

	langs, err := newLanguages(cfg)
	if err != nil {
		return err
	}

	backend, err := newBackend(cfg.Tutor)
	if err != nil {
		return err
	}
	tut := tutor.New(backend, langs, cfg.Tutor.Breaker, metrics)
	defer tut.Close()

	synthesizer, catalog, err := newSpeech(cfg)
	if err != nil {
		return err
	}
	catalog.OnChange(func(n int) { metrics.RecordVoices(context.Background(), n) })

	opts := []conversation.Option{
		conversation.WithMetrics(metrics),
		conversation.WithSpeechParams(speechParams(cfg.Speech)),
		conversation.WithWaitTimeout(cfg.Speech.WaitTimeout),
	}
	if synthesizer != nil {
		defer synthesizer.Close()
		opts = append(opts, conversation.WithPlatform(func() (speech.Platform, *audio.Capture) {
			capture := audio.NewCapture()
			return synth.New(synthesizer, capture), capture
		}))
	}
	svc := conversation.New(store.NewMemStore(), tut, catalog, langs, opts...)
	defer svc.Close()

	// Initialize enabled transports.
	var (
		transports []transport.Transport
		grpcT      *grpctransport.Transport
	)
	if cfg.Transports.GRPC.Enabled {
		grpcT = grpctransport.New(cfg.Transports.GRPC.Port)
		transports = append(transports, grpcT)
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
	}
	if len(transports) == 0 {
		return errors.New("no transports enabled; enable at least one in config")
	}

	var healthOpts []health.Option
	if cfg.Server.Metrics {
		healthOpts = append(healthOpts, health.WithMetrics())
	}
	healthServer := health.New(cfg.Server.HealthPort, healthOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(gctx, svc); err != nil {
				return fmt.Errorf("%s transport: %w", t.Name(), err)
			}
			return nil
		})
	}

	// Ready once the first voice refresh has been attempted.
	catalog.Refresh(gctx)
	metrics.RecordVoices(gctx, catalog.Len())
	if synthesizer != nil {
		g.Go(func() error { return catalog.Watch(gctx, cfg.TTS.RefreshInterval) })
	}
	healthServer.SetReady(true)
	if grpcT != nil {
		grpcT.SetServing(true)
	}
	slog.Info("speakgenie ready",
		"transports", len(transports),
		"voices", catalog.Len(),
		"speech", svc.SpeechEnabled(),
		"health_port", cfg.Server.HealthPort)

	<-gctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)
	if grpcT != nil {
		grpcT.SetServing(false)
	}

	err = g.Wait()
	slog.Info("speakgenie stopped")
	return err
}

func newLanguages(cfg *config.Config) (*language.Catalog, error) {
	overrides := make([]language.Language, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		overrides = append(overrides, language.Language{
			ID:          l.ID,
			Name:        l.Name,
			NativeName:  l.NativeName,
			Locale:      l.Locale,
			Description: l.Description,
		})
	}
	langs, err := language.New(language.Merge(overrides))
	if err != nil {
		return nil, fmt.Errorf("language catalog: %w", err)
	}
	return langs, nil
}

func newBackend(tc config.TutorConfig) (tutor.Backend, error) {
	switch tc.Backend {
	case "openai":
		if tc.OpenAI.APIKey == "" {
			slog.Warn("no OpenAI API key configured, tutor will use canned replies")
			return nil, nil
		}
		slog.Info("using OpenAI tutor", "model", tc.OpenAI.CompletionModel)
		return openaitutor.New(tc.OpenAI), nil
	case "local":
		slog.Info("using local tutor", "llm", tc.Local.LLMEndpoint, "model", tc.Local.LLMModel)
		return localtutor.New(tc.Local), nil
	case "", "none":
		slog.Info("no tutor backend, using canned replies")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tutor backend %q", tc.Backend)
	}
}

// newSpeech builds the synthesizer and the voice catalog it feeds. With TTS
// disabled the synthesizer is nil and the catalog stays empty.
func newSpeech(cfg *config.Config) (*piper.Synthesizer, *voice.Catalog, error) {
	policy, err := cfg.VoicePolicy()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.TTS.Enabled {
		slog.Info("text-to-speech disabled")
		empty := voice.SourceFunc(func(context.Context) ([]voice.Voice, error) { return nil, nil })
		return nil, voice.NewCatalog(empty, policy), nil
	}
	switch cfg.TTS.Backend {
	case "", "piper":
		s := piper.New(cfg.TTS.Piper)
		slog.Info("using Piper TTS", "endpoint", cfg.TTS.Piper.Endpoint, "language_endpoints", len(cfg.TTS.Piper.Endpoints))
		return s, voice.NewCatalog(s, policy), nil
	default:
		return nil, nil, fmt.Errorf("unknown tts backend %q", cfg.TTS.Backend)
	}
}

func speechParams(sc config.SpeechConfig) speech.Params {
	return speech.Params{Rate: sc.Rate, Pitch: sc.Pitch, Volume: sc.Volume}.Clamp()
}
