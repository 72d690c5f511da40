// Package audio plays recitation clips.
package audio

import (
	"errors"
)

var (
	// ErrNotFound indicates an audio reference could not be resolved.
	ErrNotFound = errors.New("audio not found")
	// ErrInvalidHandle indicates Play was given a handle the engine did not load.
	ErrInvalidHandle = errors.New("invalid audio handle")
)

// Handle is a loaded clip ready to play.
type Handle struct {
	Ref  string
	Path string
}

// PlayOptions controls a single playback.
type PlayOptions struct {
	// Volume is 0 (silent) to 1 (full).
	Volume float64
	// Rate is the speed multiplier; non-positive means 1.0.
	Rate float64
}

// Engine is the single audio output used by the player.
//
// At most one playback is active: Play stops the previous one first. The
// done callback runs asynchronously, at most once per Play, and never after
// Stop, Pause or a later Play.
type Engine interface {
	Load(ref string) (Handle, error)
	Play(h Handle, opts PlayOptions, done func(success bool)) error
	Stop()
	Pause()
}

func normalizeRate(rate float64) float64 {
	if rate <= 0 {
		return 1.0
	}
	return rate
}

func clampVolume(volume float64) float64 {
	switch {
	case volume < 0:
		return 0
	case volume > 1:
		return 1
	default:
		return volume
	}
}
