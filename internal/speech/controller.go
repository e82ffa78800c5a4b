package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nadzzz/speakgenie/internal/observe"
	"github.com/nadzzz/speakgenie/internal/voice"
)

var (
	// ErrExhausted is the terminal failure of a request whose every
	// fallback candidate failed.
	ErrExhausted = errors.New("speech: all voices failed")

	// ErrCancelled settles a request that was stopped or superseded.
	ErrCancelled = errors.New("speech: cancelled")
)

// Result is the settled outcome of a speak request.
type Result struct {
	// Voice is the voice that finished the utterance (nil for platform default).
	Voice *voice.Voice `json:"voice,omitempty"`

	// Locale is the tag the successful utterance was spoken under.
	Locale string `json:"locale,omitempty"`

	// Tier is the fallback tier that succeeded.
	Tier string `json:"tier,omitempty"`

	// Attempts is the number of utterances issued for the request.
	Attempts int `json:"attempts"`

	Err error `json:"-"`
}

// Request tracks one speak call until it settles.
type Request struct {
	Text   string
	Locale string
	Params Params

	done   chan struct{}
	result Result
}

func newRequest(text, locale string, p Params) *Request {
	return &Request{Text: text, Locale: locale, Params: p, done: make(chan struct{})}
}

// Done is closed once the request has settled.
func (r *Request) Done() <-chan struct{} { return r.done }

// Result returns the outcome. It is only meaningful after Done is closed.
func (r *Request) Result() Result {
	<-r.done
	return r.result
}

// Wait blocks until the request settles or ctx ends.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-r.done:
		return r.result, r.result.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Request) settle(res Result) {
	r.result = res
	close(r.done)
}

// active is the in-flight request and the remaining fallback chain. The
// head of chain is the candidate currently being spoken.
type active struct {
	req       *Request
	chain     []Candidate
	utterance uint64
	attempts  int
	lastErr   error
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records speech metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithFailureHook registers fn to be called once for every request whose
// fallback chain is exhausted.
func WithFailureHook(fn func(req *Request, err error)) Option {
	return func(c *Controller) { c.onFailure = fn }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller owns at most one active utterance at a time. Every public
// method and every platform event is serialised on one mutex, so events
// never interleave.
type Controller struct {
	platform  Platform
	catalog   *voice.Catalog
	metrics   *observe.Metrics
	onFailure func(*Request, error)
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	cur     *active
	pending []func()
}

// NewController creates an idle controller speaking through platform with
// voices from catalog.
func NewController(platform Platform, catalog *voice.Catalog, opts ...Option) *Controller {
	c := &Controller{
		platform: platform,
		catalog:  catalog,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// unlock releases the mutex and then runs the hooks queued while it was held.
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// Speak cancels whatever is playing and starts speaking text in locale.
// Blank text is ignored and yields a nil request.
func (c *Controller) Speak(text, locale string, p Params) *Request {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	defer c.unlock()

	c.cancelLocked()

	req := newRequest(text, locale, p.Clamp())
	c.cur = &active{req: req, chain: BuildChain(c.catalog, locale)}
	c.metrics.RecordSpeak(context.Background(), locale)
	c.logger.Debug("speak requested",
		"locale", locale, "text_length", len(text), "candidates", len(c.cur.chain))

	c.attemptLocked()
	return req
}

// Stop cancels the current utterance and any pending fallbacks.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.unlock()
	c.cancelLocked()
}

// Pause pauses a speaking utterance. It is a no-op in any other state.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.unlock()
	if c.state != StateSpeaking {
		return
	}
	c.platform.Pause()
	c.state = StatePaused
}

// Resume resumes a paused utterance. It is a no-op in any other state.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.unlock()
	if c.state != StatePaused {
		return
	}
	c.platform.Resume()
	c.state = StateSpeaking
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSpeaking reports whether an utterance is active, paused or not.
func (c *Controller) IsSpeaking() bool { return c.State() != StateIdle }

// IsPaused reports whether the active utterance is paused.
func (c *Controller) IsPaused() bool { return c.State() == StatePaused }

// Status returns a snapshot for display.
func (c *Controller) Status() Status {
	s := c.State()
	return Status{State: s.String(), Speaking: s != StateIdle, Paused: s == StatePaused}
}

// Voices returns the voices currently known to the catalog.
func (c *Controller) Voices() []voice.Voice { return c.catalog.Voices() }

// cancelLocked settles the active request as cancelled and returns to idle.
func (c *Controller) cancelLocked() {
	if c.cur != nil {
		c.platform.Cancel()
		c.logger.Debug("speech cancelled", "utterance", c.cur.utterance)
		c.cur.req.settle(Result{Attempts: c.cur.attempts, Err: ErrCancelled})
		c.cur = nil
	}
	c.state = StateIdle
}

// attemptLocked issues the head of the chain, dropping candidates the
// platform refuses synchronously, until one is accepted or the chain is empty.
func (c *Controller) attemptLocked() {
	a := c.cur
	for len(a.chain) > 0 {
		cand := a.chain[0]
		c.seq++
		id := c.seq
		a.utterance = id
		a.attempts++

		u := Utterance{
			ID:     id,
			Text:   a.req.Text,
			Voice:  cand.Voice,
			Locale: cand.Locale,
			Params: a.req.Params,
			Notify: func(e Event) { c.handle(id, e) },
		}
		c.state = StateSpeaking

		err := c.platform.Speak(u)
		if err == nil {
			return
		}
		c.failCandidateLocked(cand, err)
	}
	c.exhaustLocked()
}

func (c *Controller) failCandidateLocked(cand Candidate, err error) {
	a := c.cur
	a.lastErr = err
	a.chain = a.chain[1:]
	c.metrics.RecordAttempt(context.Background(), cand.Tier, "error")
	c.logger.Warn("speech attempt failed",
		"tier", cand.Tier, "locale", cand.Locale, "voice", voiceID(cand.Voice),
		"remaining", len(a.chain), "error", err)
}

func (c *Controller) exhaustLocked() {
	a := c.cur
	c.cur = nil
	c.state = StateIdle

	err := fmt.Errorf("%w: %v", ErrExhausted, a.lastErr)
	if a.lastErr == nil {
		err = ErrExhausted
	}
	a.req.settle(Result{Attempts: a.attempts, Err: err})
	c.metrics.RecordExhausted(context.Background(), a.req.Locale)
	c.logger.Error("speech failed on every voice", "locale", a.req.Locale, "attempts", a.attempts, "error", a.lastErr)

	if c.onFailure != nil {
		hook, req := c.onFailure, a.req
		c.pending = append(c.pending, func() { hook(req, err) })
	}
}

// handle applies a platform event for utterance id. Events for any
// utterance other than the current one are dropped.
func (c *Controller) handle(id uint64, e Event) {
	c.mu.Lock()
	defer c.unlock()

	a := c.cur
	if a == nil || a.utterance != id {
		c.logger.Debug("dropping stale speech event", "utterance", id, "event", e.Kind)
		return
	}
	cand := a.chain[0]

	switch e.Kind {
	case EventStart:
		if c.state != StatePaused {
			c.state = StateSpeaking
		}
		c.logger.Info("speech started",
			"tier", cand.Tier, "locale", cand.Locale, "voice", voiceID(cand.Voice))

	case EventEnd:
		c.cur = nil
		c.state = StateIdle
		c.metrics.RecordAttempt(context.Background(), cand.Tier, "ok")
		a.req.settle(Result{
			Voice:    cand.Voice,
			Locale:   cand.Locale,
			Tier:     cand.Tier,
			Attempts: a.attempts,
		})
		c.logger.Info("speech ended", "tier", cand.Tier, "attempts", a.attempts)

	case EventError:
		err := e.Err
		if err == nil {
			err = errors.New("platform reported an error")
		}
		c.failCandidateLocked(cand, err)
		c.attemptLocked()

	case EventPause:
		if c.state == StateSpeaking {
			c.state = StatePaused
		}

	case EventResume:
		if c.state == StatePaused {
			c.state = StateSpeaking
		}
	}
}

func voiceID(v *voice.Voice) string {
	if v == nil {
		return ""
	}
	return v.ID
}
