// Package tutor writes the tutor's side of a practice conversation.
//
// A Backend is an LLM endpoint. The Tutor wraps one with the scenario's
// system prompt, a circuit breaker, and canned replies, so a learner always
// gets an answer even when the model is down.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nadzzz/speakgenie/internal/config"
	"github.com/nadzzz/speakgenie/internal/language"
	"github.com/nadzzz/speakgenie/internal/observe"
	"github.com/nadzzz/speakgenie/internal/scenario"
)

// Generation settings for tutor replies: short and varied.
const (
	Temperature = 0.9
	MaxTokens   = 150
)

// ErrEmptyReply is returned when the model answers with nothing but whitespace.
var ErrEmptyReply = errors.New("tutor: empty reply from model")

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Backend is an LLM completion endpoint.
type Backend interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Complete returns the model's reply to req.
	Complete(ctx context.Context, req Request) (string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Reply is the tutor's answer to one learner message.
type Reply struct {
	Text string

	// Canned is set when Text is a scenario fallback rather than model output.
	Canned bool
}

// Tutor produces replies for any scenario and language.
type Tutor struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker[string]
	langs   *language.Catalog
	metrics *observe.Metrics
	timeout time.Duration
}

// New creates a tutor over backend. A nil backend always answers with canned replies.
func New(backend Backend, langs *language.Catalog, cfg config.BreakerConfig, m *observe.Metrics) *Tutor {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	name := "none"
	if backend != nil {
		name = backend.Name()
	}
	t := &Tutor{
		backend: backend,
		langs:   langs,
		metrics: m,
		timeout: cfg.Timeout,
	}
	t.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "tutor-" + name,
		MaxRequests: 1,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("tutor breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return t
}

// Welcome returns the opening line for a scenario.
func (t *Tutor) Welcome(scenarioID string) string {
	return scenario.Get(scenarioID).Welcome
}

// Reply answers text within the scenario, in the language of locale. It
// never fails: model errors, blank output and an open breaker all yield one
// of the scenario's canned replies.
func (t *Tutor) Reply(ctx context.Context, scenarioID, locale, text string) Reply {
	sc := scenario.Get(scenarioID)
	if t.backend == nil {
		return t.canned(ctx, sc, "no_backend")
	}

	req := Request{
		System:      t.systemPrompt(sc, locale),
		Prompt:      text,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	start := time.Now()
	out, err := t.breaker.Execute(func() (string, error) {
		cctx := ctx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}
		reply, err := t.backend.Complete(cctx, req)
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(reply)
		if reply == "" {
			return "", ErrEmptyReply
		}
		return reply, nil
	})
	elapsed := time.Since(start).Seconds()

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return t.canned(ctx, sc, "breaker_open")
	case err != nil:
		t.metrics.RecordTutor(ctx, t.backend.Name(), "error", elapsed)
		slog.Warn("tutor model failed", "backend", t.backend.Name(), "scenario", sc.ID, "error", err)
		return t.canned(ctx, sc, "model_error")
	}

	t.metrics.RecordTutor(ctx, t.backend.Name(), "ok", elapsed)
	slog.Debug("tutor replied", "backend", t.backend.Name(), "scenario", sc.ID, "reply_length", len(out))
	return Reply{Text: out}
}

func (t *Tutor) canned(ctx context.Context, sc scenario.Scenario, reason string) Reply {
	t.metrics.RecordTutorFallback(ctx, sc.ID, reason)
	return Reply{Text: sc.Fallback(), Canned: true}
}

// systemPrompt is the scenario prompt plus a language instruction when the
// learner practices something other than English.
func (t *Tutor) systemPrompt(sc scenario.Scenario, locale string) string {
	if t.langs == nil || locale == "" {
		return sc.Prompt
	}
	lang, ok := t.langs.Lookup(locale)
	if !ok || lang.ID == "en" {
		return sc.Prompt
	}
	return fmt.Sprintf("%s\nAlways reply in %s (%s), using simple words a child learning %s would understand.",
		sc.Prompt, lang.Name, lang.NativeName, lang.Name)
}

// Close releases the backend.
func (t *Tutor) Close() error {
	if t.backend == nil {
		return nil
	}
	return t.backend.Close()
}
