// Package synth implements speech.Platform on top of a TTS synthesizer and
// an audio player.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nadzzz/speakgenie/internal/audio"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/tts"
)

// Platform synthesizes each utterance and plays the result. One utterance
// runs at a time; a new Speak cancels the previous one.
type Platform struct {
	synth   tts.Synthesizer
	player  audio.Player
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures a Platform.
type Option func(*Platform)

// WithTimeout bounds synthesis of a single utterance.
func WithTimeout(d time.Duration) Option {
	return func(p *Platform) { p.timeout = d }
}

// WithLogger sets the platform's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Platform) { p.logger = l }
}

// New creates a platform speaking through s and player.
func New(s tts.Synthesizer, player audio.Player, opts ...Option) *Platform {
	p := &Platform{
		synth:   s,
		player:  player,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Speak starts u in the background.
func (p *Platform) Speak(u speech.Utterance) error {
	if u.Notify == nil {
		return fmt.Errorf("utterance %d has no event sink", u.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	// A pause left over from a cancelled utterance must not hold this one.
	p.player.Resume()

	go p.run(ctx, u)
	return nil
}

func (p *Platform) run(ctx context.Context, u speech.Utterance) {
	opts := tts.SynthesizeOpts{
		Locale: u.Locale,
		Rate:   u.Params.Rate,
		Volume: u.Params.Volume,
	}
	if u.Voice != nil {
		opts.Voice = u.Voice.ID
	}

	sctx, cancel := context.WithTimeout(ctx, p.timeout)
	res, err := p.synth.Synthesize(sctx, u.Text, opts)
	cancel()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Debug("synthesis failed", "utterance", u.ID, "voice", opts.Voice, "error", err)
		u.Notify(speech.Event{Kind: speech.EventError, Err: err})
		return
	}

	u.Notify(speech.Event{Kind: speech.EventStart})
	clip := audio.Clip{PCM: res.PCM, WAV: res.Audio, SampleRate: res.SampleRate, Channels: res.Channels}
	if err := p.player.Play(ctx, clip); err != nil {
		if ctx.Err() != nil {
			return
		}
		u.Notify(speech.Event{Kind: speech.EventError, Err: fmt.Errorf("playing audio: %w", err)})
		return
	}
	if ctx.Err() == nil {
		u.Notify(speech.Event{Kind: speech.EventEnd})
	}
}

// Cancel stops the current utterance.
func (p *Platform) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Platform) Pause()  { p.player.Pause() }
func (p *Platform) Resume() { p.player.Resume() }
