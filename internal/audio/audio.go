// Package audio plays synthesized speech clips.
package audio

import (
	"context"
	"sync"
	"time"
)

// Clip is raw 16-bit little-endian PCM audio.
type Clip struct {
	PCM        []byte
	WAV        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.PCM) / (2 * c.Channels)
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Player outputs clips. Play blocks until the clip has finished or ctx is
// cancelled. Pause and Resume act on the clip being played.
type Player interface {
	Play(ctx context.Context, clip Clip) error
	Pause()
	Resume()
}

// Capture is a Player that keeps the last clip instead of playing it. The
// HTTP API uses it to hand the audio back to the client.
type Capture struct {
	mu   sync.Mutex
	last *Clip
}

// NewCapture creates an empty capture.
func NewCapture() *Capture { return &Capture{} }

// Play stores clip and returns immediately.
func (c *Capture) Play(ctx context.Context, clip Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.last = &clip
	c.mu.Unlock()
	return nil
}

func (c *Capture) Pause()  {}
func (c *Capture) Resume() {}

// Take returns the last stored clip and clears it.
func (c *Capture) Take() (Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Clip{}, false
	}
	clip := *c.last
	c.last = nil
	return clip, true
}
