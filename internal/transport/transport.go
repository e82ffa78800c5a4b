// Package transport defines the interface for pluggable client transports.
//
// Each transport (HTTP, gRPC) implements this interface and exposes the
// conversation service to learners' devices. The service doesn't care how
// requests arrive; it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/nadzzz/speakgenie/internal/language"
	"github.com/nadzzz/speakgenie/internal/message"
	"github.com/nadzzz/speakgenie/internal/scenario"
	"github.com/nadzzz/speakgenie/internal/speech"
	"github.com/nadzzz/speakgenie/internal/voice"
)

// Service is the conversation engine a transport exposes.
type Service interface {
	CreateSession(ctx context.Context, scenarioID, lang string) (message.Session, error)
	Session(ctx context.Context, id string) (message.Session, error)
	Sessions(ctx context.Context) ([]message.Session, error)
	Messages(ctx context.Context, sessionID string) ([]message.Message, error)
	SendMessage(ctx context.Context, sessionID, text string, speak bool) (*message.SendResult, error)

	Speak(ctx context.Context, sessionID, text string, p *speech.Params) (*message.SpeechResult, error)
	Stop(ctx context.Context, sessionID string) (speech.Status, error)
	Pause(ctx context.Context, sessionID string) (speech.Status, error)
	Resume(ctx context.Context, sessionID string) (speech.Status, error)
	SpeechStatus(ctx context.Context, sessionID string) (speech.Status, error)

	Voices() []voice.Voice
	Languages() []language.Language
	Scenarios() []scenario.Scenario
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and serves them from svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}

// SpeechRequest asks for text to be spoken in a session. Unset prosody
// fields keep their defaults.
type SpeechRequest struct {
	Text   string   `json:"text"`
	Rate   *float64 `json:"rate,omitempty"`
	Pitch  *float64 `json:"pitch,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// Params returns the requested prosody, or nil when none was set.
func (r SpeechRequest) Params() *speech.Params {
	if r.Rate == nil && r.Pitch == nil && r.Volume == nil {
		return nil
	}
	p := speech.DefaultParams()
	if r.Rate != nil {
		p.Rate = *r.Rate
	}
	if r.Pitch != nil {
		p.Pitch = *r.Pitch
	}
	if r.Volume != nil {
		p.Volume = *r.Volume
	}
	return &p
}
