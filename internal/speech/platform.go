// Package speech drives text-to-speech playback for one conversation: it
// picks a voice from the shared catalog, hands utterances to a [Platform]
// and walks a bounded fallback chain when the platform reports failures.
package speech

import (
	"github.com/nadzzz/speakgenie/internal/voice"
)

// Parameter bounds. Values outside them are clamped, never rejected.
const (
	MinRate   = 0.1
	MaxRate   = 10.0
	MinPitch  = 0.0
	MaxPitch  = 2.0
	MinVolume = 0.0
	MaxVolume = 1.0
)

// Params are the prosody settings of an utterance.
type Params struct {
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// DefaultParams returns the settings used for tutor replies.
func DefaultParams() Params {
	return Params{Rate: 1.0, Pitch: 1.1, Volume: 1.0}
}

// Clamp returns p with every field forced into its valid range.
func (p Params) Clamp() Params {
	return Params{
		Rate:   clamp(p.Rate, MinRate, MaxRate),
		Pitch:  clamp(p.Pitch, MinPitch, MaxPitch),
		Volume: clamp(p.Volume, MinVolume, MaxVolume),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	return max(lo, min(hi, v))
}

// EventKind identifies a platform lifecycle callback.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventError
	EventPause
	EventResume
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	default:
		return "unknown"
	}
}

// Event is a lifecycle callback for one utterance.
type Event struct {
	Kind EventKind
	Err  error
}

// Utterance is one request to the platform to speak a span of text.
type Utterance struct {
	// ID identifies this utterance; events carry it back implicitly via Notify.
	ID uint64

	Text string

	// Voice is the selected voice, or nil to let the platform pick its default.
	Voice *voice.Voice

	// Locale is the language tag the text should be spoken in.
	Locale string

	Params Params

	// Notify receives the utterance's lifecycle events.
	Notify func(Event)
}

// Platform is the speech backend. Speak must return without invoking Notify;
// events are delivered later from another goroutine. Cancel, Pause and
// Resume act on whatever utterance is currently playing.
type Platform interface {
	Speak(u Utterance) error
	Cancel()
	Pause()
	Resume()
}
