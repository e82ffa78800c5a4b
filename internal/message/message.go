// Package message defines the core data types flowing through a speakgenie conversation.
package message

import (
	"encoding/base64"
	"time"
)

// Sender identifies who wrote a chat message.
type Sender string

const (
	// SenderUser marks a message typed or spoken by the learner.
	SenderUser Sender = "user"

	// SenderAI marks a message written by the tutor.
	SenderAI Sender = "ai"
)

// Session is one practice conversation.
type Session struct {
	// ID is a unique identifier for this session (UUID).
	ID string `json:"id"`

	// Scenario is the role-play setting (e.g., "restaurant").
	Scenario string `json:"scenario"`

	// Language is the locale tag the learner practices in (e.g., "hi-IN").
	Language string `json:"language"`

	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one line of a conversation.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SpeechResult reports how a tutor reply was voiced.
type SpeechResult struct {
	// VoiceID is the voice that spoke the reply. Empty means the platform default.
	VoiceID string `json:"voiceId,omitempty"`

	// Locale is the tag the reply was finally spoken under.
	Locale string `json:"locale,omitempty"`

	// Tier is the fallback tier that succeeded ("primary", "substitute", "last_resort").
	Tier string `json:"tier,omitempty"`

	// Attempts is the number of voices tried.
	Attempts int `json:"attempts"`

	// Audio is the synthesized clip as a base64-encoded string.
	Audio string `json:"audio,omitempty"`

	// ContentType is the MIME type of Audio (e.g., "audio/wav").
	ContentType string `json:"contentType,omitempty"`

	// Error is set if every voice failed. The reply text is still valid.
	Error string `json:"error,omitempty"`
}

// SetAudioBytes base64-encodes raw audio bytes into Audio.
func (r *SpeechResult) SetAudioBytes(audio []byte, contentType string) {
	if len(audio) > 0 {
		r.Audio = base64.StdEncoding.EncodeToString(audio)
		r.ContentType = contentType
	}
}

// SendResult is the outcome of a learner message.
type SendResult struct {
	UserMessage Message       `json:"userMessage"`
	AIMessage   Message       `json:"aiMessage"`
	Speech      *SpeechResult `json:"speech,omitempty"`
}
