package audio

import (
	"fmt"
	"sync"
	"time"
)

// Playback records one Play call on a SimulatedEngine.
type Playback struct {
	Ref    string
	Volume float64
	Rate   float64
}

// SimulatedEngine pretends to play clips of a fixed duration. It is used for
// headless runs and demos without media files.
type SimulatedEngine struct {
	// Library, when set, is used to resolve refs; otherwise every ref except
	// those in Missing resolves.
	Library *Library
	// Clip is the nominal duration of every clip, divided by the rate.
	Clip time.Duration
	// Missing lists refs that fail to load.
	Missing map[string]bool

	mu      sync.Mutex
	nextID  uint64
	current uint64
	timer   *time.Timer
	history []Playback
}

// NewSimulatedEngine returns an engine whose clips last clip.
func NewSimulatedEngine(clip time.Duration) *SimulatedEngine {
	return &SimulatedEngine{Clip: clip}
}

// Load resolves ref.
func (e *SimulatedEngine) Load(ref string) (Handle, error) {
	if e.Library != nil {
		path, err := e.Library.Resolve(ref)
		if err != nil {
			return Handle{}, err
		}
		return Handle{Ref: ref, Path: path}, nil
	}
	if ref == "" || e.Missing[ref] {
		return Handle{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return Handle{Ref: ref, Path: ref}, nil
}

// Play schedules completion after the clip duration scaled by rate.
func (e *SimulatedEngine) Play(h Handle, opts PlayOptions, done func(success bool)) error {
	if h.Ref == "" {
		return ErrInvalidHandle
	}

	rate := normalizeRate(opts.Rate)
	duration := time.Duration(float64(e.Clip) / rate)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.nextID++
	id := e.nextID
	e.current = id
	e.history = append(e.history, Playback{Ref: h.Ref, Volume: clampVolume(opts.Volume), Rate: rate})
	e.timer = time.AfterFunc(duration, func() {
		e.mu.Lock()
		live := e.current == id
		if live {
			e.current = 0
			e.timer = nil
		}
		e.mu.Unlock()
		if live && done != nil {
			done(true)
		}
	})
	return nil
}

// Stop cancels the running clip.
func (e *SimulatedEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Pause behaves like Stop.
func (e *SimulatedEngine) Pause() {
	e.Stop()
}

// History returns every Play call so far.
func (e *SimulatedEngine) History() []Playback {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Playback, len(e.history))
	copy(out, e.history)
	return out
}

// Playing reports whether a clip is running.
func (e *SimulatedEngine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != 0
}

func (e *SimulatedEngine) stopLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.current = 0
}
