// Package piper implements the TTS Synthesizer using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200. This package
// implements a client for that protocol to synthesize speech and to list the
// voices a server has installed.
package piper

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/speakgenie/internal/config"
	"github.com/nadzzz/speakgenie/internal/tts"
	"github.com/nadzzz/speakgenie/internal/voice"
)

// Synthesizer implements tts.Synthesizer and voice.Source using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string            // default host:port of the Piper Wyoming server
	endpoints map[string]string // language subtag -> host:port for per-language Piper instances
	declared  []voice.Voice     // fixed voice list; skips describe when set
	dialer    net.Dialer

	mu     sync.RWMutex
	routes map[string]string // voice ID -> endpoint that described it
}

// New creates a new Piper synthesizer from config.
func New(cfg config.PiperConfig) *Synthesizer {
	cleanEndpoint := func(ep string) string {
		ep = strings.TrimPrefix(ep, "tcp://")
		ep = strings.TrimPrefix(ep, "http://")
		return ep
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[strings.ToLower(lang)] = cleanEndpoint(ep)
	}

	declared := make([]voice.Voice, 0, len(cfg.Voices))
	for _, vc := range cfg.Voices {
		v := voice.Voice{ID: vc.ID, Name: vc.Name, Locale: vc.Locale}
		if v.Locale == "" {
			v.Locale = modelLocale(vc.ID)
		}
		if v.Name == "" {
			v.Name = vc.ID
		}
		declared = append(declared, v)
	}

	return &Synthesizer{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		declared:  declared,
		dialer:    net.Dialer{Timeout: 10 * time.Second},
	}
}

// endpointFor returns the Wyoming server for a synthesis request. A named
// voice goes to the server that listed it, or else to the server for the
// voice's own language; locale only routes requests without a voice.
func (s *Synthesizer) endpointFor(voiceID, locale string) string {
	if voiceID != "" {
		s.mu.RLock()
		ep := s.routes[voiceID]
		s.mu.RUnlock()
		if ep != "" {
			return ep
		}
		locale = s.voiceLocale(voiceID)
	}
	if ep := s.endpoints[strings.ToLower(voice.PrimarySubtag(locale))]; ep != "" {
		return ep
	}
	return s.endpoint
}

// voiceLocale returns the declared locale of id, or the one in its model name.
func (s *Synthesizer) voiceLocale(id string) string {
	for _, v := range s.declared {
		if v.ID == id {
			return v.Locale
		}
	}
	return modelLocale(id)
}

// dial opens a connection bounded by ctx's deadline.
func (s *Synthesizer) dial(ctx context.Context, endpoint string) (net.Conn, error) {
	conn, err := s.dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}
	// Unblock reads when ctx is cancelled mid-stream.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	return &stoppableConn{Conn: conn, stop: stop}, nil
}

type stoppableConn struct {
	net.Conn
	stop func() bool
}

func (c *stoppableConn) Close() error {
	c.stop()
	return c.Conn.Close()
}

// Synthesize sends text to the Piper server and returns synthesized audio as WAV.
// Piper has no runtime speaking-rate control, so opts.Rate is ignored.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	endpoint := s.endpointFor(opts.Voice, opts.Locale)
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for voice %q locale %q", opts.Voice, opts.Locale)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", opts.Voice,
		"locale", opts.Locale, "rate", opts.Rate, "endpoint", endpoint)

	conn, err := s.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	data := map[string]any{"text": text}
	if opts.Voice != "" {
		data["voice"] = map[string]any{"name": opts.Voice}
	}
	if err := writeEvent(conn, wyomingEvent{Type: "synthesize", Data: data}, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	// Read response events: audio-start → audio-chunk* → audio-stop
	var (
		r          = bufio.NewReader(conn)
		pcmBuf     bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}
			slog.Debug("piper audio-start", "rate", sampleRate, "channels", channels, "width", width)

		case "audio-chunk":
			if len(payload) > 0 {
				pcmBuf.Write(payload)
			}

		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcmBuf.Len())
			pcm := pcmBuf.Bytes()
			if width == 2 {
				scaleVolume(pcm, opts.Volume)
			}
			return &tts.SynthesizeResult{
				Audio:       pcmToWAV(pcm, sampleRate, channels, width),
				PCM:         pcm,
				ContentType: "audio/wav",
				SampleRate:  sampleRate,
				Channels:    channels,
			}, nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// Voices lists the voices the configured servers have installed. A declared
// voice list in the config is returned as-is without asking the servers.
func (s *Synthesizer) Voices(ctx context.Context) ([]voice.Voice, error) {
	if len(s.declared) > 0 {
		return slices.Clone(s.declared), nil
	}

	var targets []string
	if s.endpoint != "" {
		targets = append(targets, s.endpoint)
	}
	for _, lang := range slices.Sorted(maps.Keys(s.endpoints)) {
		if ep := s.endpoints[lang]; !slices.Contains(targets, ep) {
			targets = append(targets, ep)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no piper endpoint configured")
	}

	var (
		out    []voice.Voice
		routes = map[string]string{}
		failed = map[string]bool{}
		errs   []error
	)
	for _, ep := range targets {
		described, err := s.describe(ctx, ep)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ep, err))
			failed[ep] = true
			continue
		}
		for _, v := range described {
			if _, ok := routes[v.ID]; !ok {
				routes[v.ID] = ep
				out = append(out, v)
			}
		}
	}
	if len(errs) == len(targets) {
		return nil, fmt.Errorf("describing piper voices: %w", errors.Join(errs...))
	}

	s.mu.Lock()
	// Keep routes learned from servers that did not answer this time.
	for id, ep := range s.routes {
		if _, ok := routes[id]; !ok && failed[ep] {
			routes[id] = ep
		}
	}
	s.routes = routes
	s.mu.Unlock()
	for _, err := range errs {
		slog.Warn("piper describe failed", "error", err)
	}
	return out, nil
}

// describe runs one describe/info exchange.
func (s *Synthesizer) describe(ctx context.Context, endpoint string) ([]voice.Voice, error) {
	conn, err := s.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	if err := writeEvent(conn, wyomingEvent{Type: "describe"}, nil); err != nil {
		return nil, fmt.Errorf("sending describe event: %w", err)
	}

	r := bufio.NewReader(conn)
	for {
		evt, _, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}
		if evt.Type != "info" {
			slog.Debug("piper unexpected event during describe", "type", evt.Type)
			continue
		}

		var voices []voice.Voice
		for _, dv := range infoVoices(evt.Data) {
			if dv.Installed != nil && !*dv.Installed {
				continue
			}
			locale := modelLocale(dv.Name)
			if len(dv.Languages) > 0 {
				locale = normalizeLocale(dv.Languages[0])
			}
			name := dv.Description
			if name == "" {
				name = dv.Name
			}
			voices = append(voices, voice.Voice{ID: dv.Name, Name: name, Locale: locale})
		}
		return voices, nil
	}
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }

// normalizeLocale converts Piper's "en_US" form to "en-US".
func normalizeLocale(lang string) string {
	return strings.ReplaceAll(lang, "_", "-")
}

// modelLocale derives the locale from a model name like "hi_IN-pratham-medium".
func modelLocale(model string) string {
	lang, _, _ := strings.Cut(model, "-")
	return normalizeLocale(lang)
}
