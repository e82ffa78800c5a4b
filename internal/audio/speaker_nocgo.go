//go:build nocgo

package audio

import (
	"context"
	"errors"
)

// ErrNoDevice is returned by Speaker in builds without cgo.
var ErrNoDevice = errors.New("audio: no sound device in nocgo build")

// Speaker stub for nocgo builds.
type Speaker struct{}

func NewSpeaker() *Speaker { return &Speaker{} }

func (s *Speaker) Play(ctx context.Context, clip Clip) error { return ErrNoDevice }
func (s *Speaker) Pause()                                    {}
func (s *Speaker) Resume()                                   {}
