//go:build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays clips on the local sound device through oto. oto allows one
// context per process, so the first clip fixes the sample rate and channel
// count.
type Speaker struct {
	mu         sync.Mutex
	context    *oto.Context
	sampleRate int
	channels   int
	current    *oto.Player
	paused     bool
}

// NewSpeaker returns a speaker. The audio device is opened on first Play.
func NewSpeaker() *Speaker { return &Speaker{} }

func (s *Speaker) open(clip Clip) (*oto.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.context != nil {
		if clip.SampleRate != s.sampleRate || clip.Channels != s.channels {
			return nil, fmt.Errorf("clip format %d Hz/%d ch does not match device %d Hz/%d ch",
				clip.SampleRate, clip.Channels, s.sampleRate, s.channels)
		}
		return s.context, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   clip.SampleRate,
		ChannelCount: clip.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	s.context = ctx
	s.sampleRate = clip.SampleRate
	s.channels = clip.Channels
	return ctx, nil
}

// Play writes clip to the sound device and waits for it to drain.
func (s *Speaker) Play(ctx context.Context, clip Clip) error {
	if len(clip.PCM) == 0 {
		return nil
	}
	octx, err := s.open(clip)
	if err != nil {
		return err
	}

	// The reader keeps clip.PCM referenced for the life of the player.
	player := octx.NewPlayer(bytes.NewReader(clip.PCM))
	defer player.Close()

	s.mu.Lock()
	s.current = player
	if !s.paused {
		player.Play()
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			s.mu.Lock()
			done := !s.paused && !player.IsPlaying()
			s.mu.Unlock()
			if done {
				return player.Err()
			}
		}
	}
}

func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	if s.current != nil {
		s.current.Pause()
	}
}

func (s *Speaker) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	if s.current != nil {
		s.current.Play()
	}
}
