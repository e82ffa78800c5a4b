// Package tts defines the interface for text-to-speech synthesis backends.
//
// A synthesizer turns one utterance into audio. Voice choice and fallback
// happen upstream in the speech controller; a synthesizer only speaks with
// the voice it is handed, or its own default when none is given.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Voice is the backend voice identifier. Empty selects the backend default.
	Voice string

	// Locale is the language tag of the text (e.g. "hi-IN").
	Locale string

	// Rate is the speaking rate multiplier (1.0 is normal speed).
	Rate float64

	// Volume scales the output amplitude, 0.0 (silent) to 1.0 (unchanged).
	Volume float64
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates a WAV clip from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a WAV file.
	Audio []byte

	// PCM is the raw 16-bit little-endian sample data inside Audio.
	PCM []byte

	// ContentType is the MIME type of Audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 22050).
	SampleRate int

	// Channels is the number of audio channels (typically 1).
	Channels int
}
