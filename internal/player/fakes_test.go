package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/santorosario/rosario/internal/audio"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/sequences"
)

type fakeCall struct {
	Ref    string
	Volume float64
	Rate   float64
	done   func(bool)
}

// fakeEngine records plays and completes them only when the test says so.
type fakeEngine struct {
	mu      sync.Mutex
	missing map[string]bool
	calls   []fakeCall
	active  int
	stops   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{missing: map[string]bool{}, active: -1}
}

func (e *fakeEngine) Load(ref string) (audio.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.missing[ref] {
		return audio.Handle{}, fmt.Errorf("%w: %s", audio.ErrNotFound, ref)
	}
	return audio.Handle{Ref: ref, Path: ref}, nil
}

func (e *fakeEngine) Play(h audio.Handle, opts audio.PlayOptions, done func(bool)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, fakeCall{Ref: h.Ref, Volume: opts.Volume, Rate: opts.Rate, done: done})
	e.active = len(e.calls) - 1
	return nil
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = -1
	e.stops++
}

func (e *fakeEngine) Pause() {
	e.Stop()
}

// complete finishes the active clip.
func (e *fakeEngine) complete(success bool) bool {
	e.mu.Lock()
	if e.active < 0 {
		e.mu.Unlock()
		return false
	}
	done := e.calls[e.active].done
	e.active = -1
	e.mu.Unlock()
	done(success)
	return true
}

func (e *fakeEngine) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *fakeEngine) last() fakeCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return fakeCall{}
	}
	return e.calls[len(e.calls)-1]
}

func (e *fakeEngine) call(i int) fakeCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[i]
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// manualClock hands out timers that fire only on demand.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{delay: d, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *manualClock) pending() []*manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*manualTimer
	for _, timer := range c.timers {
		if !timer.stopped {
			out = append(out, timer)
		}
	}
	return out
}

// fireAll runs every timer that has not been stopped.
func (c *manualClock) fireAll() int {
	timers := c.pending()
	for _, timer := range timers {
		timer.stopped = true
		timer.fn()
	}
	return len(timers)
}

type recordingSink struct {
	mu     sync.Mutex
	events []PlaybackEvent
	closed bool
}

func (s *recordingSink) Emit(ctx context.Context, event PlaybackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.Type)
	}
	return out
}

type harness struct {
	ctrl   *Controller
	engine *fakeEngine
	clock  *manualClock
	sink   *recordingSink
}

// newHarness builds the minimal joyful sequence: index 2 is the first
// mystery's Our Father, 16 and 17 open the second mystery, 73 is the pause
// marker.
func newHarness(t *testing.T, configure func(*Options)) *harness {
	t.Helper()

	h := &harness{
		engine: newFakeEngine(),
		clock:  &manualClock{},
		sink:   &recordingSink{},
	}
	logger := zerolog.Nop()
	opts := DefaultOptions()
	opts.AfterFunc = h.clock.AfterFunc
	opts.Sink = h.sink
	opts.Logger = &logger
	if configure != nil {
		configure(&opts)
	}

	seq := sequences.Build(models.Configuration{}, models.ThemeJoyful)
	h.ctrl = New(seq, h.engine, opts)
	t.Cleanup(func() { h.ctrl.Close() })
	return h
}
