// Package conversation implements the tutor chat pipeline.
//
// The service receives learner messages from transports, asks the tutor for
// a reply, stores both, and voices the reply through the session's speech
// controller. A speech failure never fails the message: the reply text is
// always returned, with the speech outcome attached.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/speakgenie/internal/audio"
	"github.com/nadzzz/speakgenie/internal/language"
	"github.com/nadzzz/speakgenie/internal/message"
	"github.com/nadzzz/speakgenie/internal/observe"
	"github.com/nadzzz/speakgenie/internal/scenario"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/store"
	"github.com/nadzzz/speakgenie/internal/tutor"
	"github.com/nadzzz/speakgenie/internal/voice"
)

var (
	// ErrEmptyMessage is returned for blank learner input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownLanguage is returned when a session asks for a language the catalog lacks.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrSpeechDisabled is returned by speech operations when no platform is configured.
	ErrSpeechDisabled = errors.New("speech is disabled")
)

// PlatformFactory builds the speech platform for one session. The capture
// is non-nil when the platform records clips instead of playing them.
type PlatformFactory func() (speech.Platform, *audio.Capture)

// sessionSpeech is the speech stack owned by one session.
type sessionSpeech struct {
	ctrl    *speech.Controller
	capture *audio.Capture
}

// Option configures a Service.
type Option func(*Service)

// WithPlatform enables speech, building one platform per session.
func WithPlatform(f PlatformFactory) Option {
	return func(s *Service) { s.newPlatform = f }
}

// WithSpeechParams sets the prosody used for tutor replies.
func WithSpeechParams(p speech.Params) Option {
	return func(s *Service) { s.params = p }
}

// WithWaitTimeout bounds how long a request waits for its speech to finish.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Service) { s.waitTimeout = d }
}

// WithMetrics records session and speech metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service is the central conversation engine.
type Service struct {
	store       store.Store
	tutor       *tutor.Tutor
	catalog     *voice.Catalog
	langs       *language.Catalog
	newPlatform PlatformFactory
	params      speech.Params
	waitTimeout time.Duration
	metrics     *observe.Metrics

	mu       sync.Mutex
	speakers map[string]*sessionSpeech
}

// New creates a Service. Speech stays disabled unless [WithPlatform] is given.
func New(st store.Store, t *tutor.Tutor, catalog *voice.Catalog, langs *language.Catalog, opts ...Option) *Service {
	s := &Service{
		store:       st,
		tutor:       t,
		catalog:     catalog,
		langs:       langs,
		params:      speech.DefaultParams(),
		waitTimeout: 30 * time.Second,
		speakers:    make(map[string]*sessionSpeech),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SpeechEnabled reports whether replies can be voiced.
func (s *Service) SpeechEnabled() bool { return s.newPlatform != nil }

// CreateSession opens a conversation and stores the tutor's welcome line.
// An unknown scenario becomes free chat; an empty language is the default one.
func (s *Service) CreateSession(ctx context.Context, scenarioID, lang string) (message.Session, error) {
	l := s.langs.Default()
	if lang != "" {
		var ok bool
		if l, ok = s.langs.Lookup(lang); !ok {
			return message.Session{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
		}
	}
	sc := scenario.Get(scenarioID)

	sess, err := s.store.CreateSession(ctx, message.Session{Scenario: sc.ID, Language: l.Locale})
	if err != nil {
		return message.Session{}, fmt.Errorf("creating session: %w", err)
	}
	if _, err := s.store.AddMessage(ctx, message.Message{
		SessionID: sess.ID,
		Sender:    message.SenderAI,
		Message:   s.tutor.Welcome(sc.ID),
	}); err != nil {
		return message.Session{}, fmt.Errorf("storing welcome message: %w", err)
	}

	s.metrics.SessionOpened(ctx)
	slog.Info("session created", "session_id", sess.ID, "scenario", sess.Scenario, "language", sess.Language)
	return sess, nil
}

// Session returns one session.
func (s *Service) Session(ctx context.Context, id string) (message.Session, error) {
	return s.store.Session(ctx, id)
}

// Sessions returns every session, newest first.
func (s *Service) Sessions(ctx context.Context) ([]message.Session, error) {
	return s.store.Sessions(ctx)
}

// Messages returns a session's transcript, oldest first.
func (s *Service) Messages(ctx context.Context, sessionID string) ([]message.Message, error) {
	return s.store.Messages(ctx, sessionID)
}

// SendMessage stores the learner's text, gets the tutor's reply and, when
// speak is set and speech is enabled, voices it.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string, speak bool) (*message.SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	start := time.Now()
	logger := slog.With("session_id", sessionID)

	sess, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.store.AddMessage(ctx, message.Message{SessionID: sess.ID, Sender: message.SenderUser, Message: text})
	if err != nil {
		return nil, fmt.Errorf("storing user message: %w", err)
	}

	reply := s.tutor.Reply(ctx, sess.Scenario, sess.Language, text)
	aiMsg, err := s.store.AddMessage(ctx, message.Message{SessionID: sess.ID, Sender: message.SenderAI, Message: reply.Text})
	if err != nil {
		return nil, fmt.Errorf("storing tutor reply: %w", err)
	}
	logger.Info("tutor replied", "canned", reply.Canned, "reply_length", len(reply.Text))

	result := &message.SendResult{UserMessage: userMsg, AIMessage: aiMsg}
	if speak && s.SpeechEnabled() {
		result.Speech = s.speak(ctx, sess, reply.Text, s.params)
	}

	logger.Info("message handled", "duration", time.Since(start), "spoken", result.Speech != nil)
	return result, nil
}

// Speak voices text in the session's language and waits for the outcome.
// A nil p uses the service defaults.
func (s *Service) Speak(ctx context.Context, sessionID, text string, p *speech.Params) (*message.SpeechResult, error) {
	if !s.SpeechEnabled() {
		return nil, ErrSpeechDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	params := s.params
	if p != nil {
		params = *p
	}
	return s.speak(ctx, sess, text, params), nil
}

func (s *Service) speak(ctx context.Context, sess message.Session, text string, p speech.Params) *message.SpeechResult {
	sp := s.speaker(sess.ID)
	if sp.capture != nil {
		sp.capture.Take()
	}

	req := sp.ctrl.Speak(text, sess.Language, p)
	if req == nil {
		return &message.SpeechResult{Error: ErrEmptyMessage.Error()}
	}

	wctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()
	res, err := req.Wait(wctx)

	out := &message.SpeechResult{Locale: res.Locale, Tier: res.Tier, Attempts: res.Attempts}
	if res.Voice != nil {
		out.VoiceID = res.Voice.ID
	}
	switch {
	case err == nil:
		if sp.capture != nil {
			if clip, ok := sp.capture.Take(); ok {
				out.SetAudioBytes(clip.WAV, "audio/wav")
			}
		}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		// The utterance keeps playing; only the wait gave up.
		out.Error = "speech still in progress"
	default:
		out.Error = err.Error()
	}
	return out
}

// Stop cancels the session's speech.
func (s *Service) Stop(ctx context.Context, sessionID string) (speech.Status, error) {
	return s.control(ctx, sessionID, (*speech.Controller).Stop)
}

// Pause pauses the session's speech.
func (s *Service) Pause(ctx context.Context, sessionID string) (speech.Status, error) {
	return s.control(ctx, sessionID, (*speech.Controller).Pause)
}

// Resume resumes the session's speech.
func (s *Service) Resume(ctx context.Context, sessionID string) (speech.Status, error) {
	return s.control(ctx, sessionID, (*speech.Controller).Resume)
}

// SpeechStatus reports the session's playback state.
func (s *Service) SpeechStatus(ctx context.Context, sessionID string) (speech.Status, error) {
	return s.control(ctx, sessionID, nil)
}

func (s *Service) control(ctx context.Context, sessionID string, fn func(*speech.Controller)) (speech.Status, error) {
	if !s.SpeechEnabled() {
		return speech.Status{}, ErrSpeechDisabled
	}
	if _, err := s.store.Session(ctx, sessionID); err != nil {
		return speech.Status{}, err
	}
	sp := s.speaker(sessionID)
	if fn != nil {
		fn(sp.ctrl)
	}
	return sp.ctrl.Status(), nil
}

// speaker returns the session's speech stack, creating it on first use.
func (s *Service) speaker(sessionID string) *sessionSpeech {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sp, ok := s.speakers[sessionID]; ok {
		return sp
	}
	platform, capture := s.newPlatform()
	logger := slog.With("session_id", sessionID)
	sp := &sessionSpeech{
		ctrl: speech.NewController(platform, s.catalog,
			speech.WithMetrics(s.metrics),
			speech.WithLogger(logger),
			speech.WithFailureHook(func(req *speech.Request, err error) {
				logger.Warn("reply could not be spoken", "locale", req.Locale, "error", err)
			}),
		),
		capture: capture,
	}
	s.speakers[sessionID] = sp
	return sp
}

// Voices returns the voices currently available.
func (s *Service) Voices() []voice.Voice { return s.catalog.Voices() }

// Languages returns the practice languages.
func (s *Service) Languages() []language.Language { return s.langs.All() }

// Scenarios returns the conversation scenarios.
func (s *Service) Scenarios() []scenario.Scenario { return scenario.All() }

// Close stops every session's speech.
func (s *Service) Close() {
	s.mu.Lock()
	speakers := make([]*sessionSpeech, 0, len(s.speakers))
	for _, sp := range s.speakers {
		speakers = append(speakers, sp)
	}
	s.mu.Unlock()

	for _, sp := range speakers {
		sp.ctrl.Stop()
	}
}
