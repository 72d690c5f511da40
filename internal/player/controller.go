// Package player drives call-and-response playback of a recitation sequence.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/santorosario/rosario/internal/audio"
	"github.com/santorosario/rosario/internal/logging"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/sequences"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Publisher receives the status after every state update, in update order.
// Publish must not call mutating controller methods.
type Publisher interface {
	Publish(status Status)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(status Status)

// Publish calls f.
func (f PublisherFunc) Publish(status Status) {
	f(status)
}

// Options configures a Controller.
type Options struct {
	// Responsorial selects call-and-response mode instead of solo recitation.
	Responsorial bool

	// AutoVoiceReply plays replies automatically in responsorial mode.
	// Default: true.
	AutoVoiceReply bool

	// Rate is the playback speed multiplier.
	// Default: 1.0.
	Rate float64

	// ReplyDelay is the pause before an automatic reply.
	// Default: 1 second.
	ReplyDelay time.Duration

	// SkipMissingAudio advances past segments whose audio fails to load.
	SkipMissingAudio bool

	Publisher Publisher
	Sink      EventSink
	Logger    *zerolog.Logger

	// SessionID names the first playback session; a new one is generated
	// for every later run.
	SessionID string

	// AfterFunc overrides time.AfterFunc, for tests.
	AfterFunc AfterFunc
}

// DefaultOptions returns solo mode with automatic replies at normal speed.
func DefaultOptions() Options {
	return Options{
		AutoVoiceReply: true,
		Rate:           1.0,
		ReplyDelay:     time.Second,
	}
}

// OptionsFromSettings maps persisted settings onto controller options.
func OptionsFromSettings(settings models.Settings) Options {
	opts := DefaultOptions()
	opts.Responsorial = settings.Responsorial()
	opts.AutoVoiceReply = settings.AutoVoiceReply
	opts.Rate = settings.EffectiveRate()
	return opts
}

// Controller owns the cursor and phase over a sequence's enabled view and
// the single audio playback slot.
type Controller struct {
	engine     audio.Engine
	publisher  Publisher
	sink       EventSink
	logger     zerolog.Logger
	afterFunc  AfterFunc
	replyDelay time.Duration

	// publishMu serializes delivery of queued events and statuses.
	publishMu sync.Mutex

	mu             sync.Mutex
	seq            *models.Sequence
	enabled        []models.Segment
	nav            []sequences.NavigationPoint
	cursor         int
	phase          Phase
	playing        bool
	finished       bool
	responsorial   bool
	autoVoiceReply bool
	skipMissing    bool
	rate           float64
	pendingReply   string
	errMsg         string
	presentation   sequences.Presentation

	// playID identifies the engine playback whose completion is awaited.
	playID uint64
	// replyGen invalidates scheduled automatic replies.
	replyGen   uint64
	replyTimer Timer

	sessionID      string
	sessionStarted bool
	startedAt      time.Time
	closed         bool

	outbox  []PlaybackEvent
	pending []delivery
}

// delivery is the output of one update.
type delivery struct {
	events []PlaybackEvent
	status Status
}

// New creates a controller positioned at the start of seq. Playback does not
// begin until Start.
func New(seq *models.Sequence, engine audio.Engine, opts Options) *Controller {
	defaults := DefaultOptions()
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = defaults.ReplyDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}
	if opts.Sink == nil {
		opts.Sink = NoopSink{}
	}
	logger := logging.Component("player")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.New().String()
	}
	if seq == nil {
		seq = &models.Sequence{}
	}

	c := &Controller{
		engine:         engine,
		publisher:      opts.Publisher,
		sink:           opts.Sink,
		logger:         logger,
		afterFunc:      opts.AfterFunc,
		replyDelay:     opts.ReplyDelay,
		responsorial:   opts.Responsorial,
		autoVoiceReply: opts.AutoVoiceReply,
		skipMissing:    opts.SkipMissingAudio,
		rate:           models.NormalizeRate(opts.Rate),
		sessionID:      opts.SessionID,
	}
	c.setSequenceLocked(seq)
	return c
}

// Start begins playback from the cursor.
func (c *Controller) Start() {
	c.Resume()
}

// Resume marks playback active and replays the current segment's intro from
// its start.
func (c *Controller) Resume() {
	c.update(c.resumeLocked)
}

// Pause stops audio and keeps the cursor.
func (c *Controller) Pause() {
	c.update(c.pauseLocked)
}

// TogglePlay pauses when playing and resumes otherwise.
func (c *Controller) TogglePlay() {
	c.update(func() {
		if c.playing {
			c.pauseLocked()
			return
		}
		c.resumeLocked()
	})
}

func (c *Controller) resumeLocked() {
	if c.closed {
		return
	}
	c.beginSessionLocked()
	c.playing = true
	c.stopAudioLocked()
	c.refreshLocked()
	c.playCurrentLocked()
}

func (c *Controller) pauseLocked() {
	if !c.playing {
		return
	}
	c.playing = false
	c.stopAudioLocked()
	c.logger.Info().Int("cursor", c.cursor).Msg("playback paused")
	c.emitLocked(EventPaused, c.segmentPayloadLocked(0, ""))
}

// Next moves to the following segment, finishing past the end.
func (c *Controller) Next() {
	c.update(c.nextLocked)
}

// Previous moves back one segment. At the first segment it does nothing.
func (c *Controller) Previous() {
	c.update(func() {
		if c.cursor <= 0 {
			return
		}
		c.stopAudioLocked()
		c.cursor--
		c.refreshLocked()
		if c.playing {
			c.playCurrentLocked()
		}
	})
}

// JumpTo moves to index in the enabled view. Out-of-range indexes leave
// playback untouched.
func (c *Controller) JumpTo(index int) {
	c.update(func() {
		if index < 0 || index >= len(c.enabled) {
			c.logger.Warn().
				Int("index", index).
				Int("total", len(c.enabled)).
				Msg("jump target out of range")
			return
		}
		c.stopAudioLocked()
		c.cursor = index
		c.refreshLocked()
		if c.playing {
			c.playCurrentLocked()
		}
	})
}

// RespondNow plays the reply of a segment waiting for a manual response.
func (c *Controller) RespondNow() {
	c.update(func() {
		if !c.playing || !c.responsorial || c.phase != PhaseWaitingManualReply {
			return
		}
		if c.cursor >= len(c.enabled) {
			return
		}
		segment := c.enabled[c.cursor]
		if !segment.HasReply() {
			c.nextLocked()
			return
		}
		c.playReplyLocked(segment.ReplyAudio, 1, PhaseReplyAudible)
	})
}

// SetResponsorial switches mode. While playing, the current segment restarts
// from its intro under the new mode.
func (c *Controller) SetResponsorial(responsorial bool) {
	c.update(func() {
		c.setResponsorialLocked(responsorial)
	})
}

// ToggleResponsorial flips the mode.
func (c *Controller) ToggleResponsorial() {
	c.update(func() {
		c.setResponsorialLocked(!c.responsorial)
	})
}

func (c *Controller) setResponsorialLocked(responsorial bool) {
	if c.responsorial == responsorial {
		return
	}
	c.responsorial = responsorial
	c.logger.Info().Bool("responsorial", responsorial).Msg("mode changed")
	if c.playing {
		c.stopAudioLocked()
		c.playCurrentLocked()
	}
}

// SetAutoVoiceReply affects only future intro completions.
func (c *Controller) SetAutoVoiceReply(enabled bool) {
	c.update(func() {
		c.autoVoiceReply = enabled
	})
}

// ToggleAutoVoiceReply flips automatic replies.
func (c *Controller) ToggleAutoVoiceReply() {
	c.update(func() {
		c.autoVoiceReply = !c.autoVoiceReply
	})
}

// SetRate changes the speed used by subsequent clips.
func (c *Controller) SetRate(rate float64) {
	c.update(func() {
		c.rate = models.NormalizeRate(rate)
	})
}

// UpdateSequence replaces the sequence and rewinds to its start. Playback is
// left paused. An open session is closed as incomplete; the next Resume
// starts a new one for seq.
func (c *Controller) UpdateSequence(seq *models.Sequence) {
	c.update(func() {
		if seq == nil {
			seq = &models.Sequence{}
		}
		c.playing = false
		c.stopAudioLocked()
		c.endSessionLocked(ReasonSequenceChanged)
		c.setSequenceLocked(seq)
	})
}

// Status returns a snapshot of the observable state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// NavigationPoints returns the jump targets of the current sequence.
func (c *Controller) NavigationPoints() []sequences.NavigationPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sequences.NavigationPoint, len(c.nav))
	copy(out, c.nav)
	return out
}

// Sequence returns the current sequence.
func (c *Controller) Sequence() *models.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Close stops playback and closes the event sink.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.playing = false
	c.stopAudioLocked()
	c.mu.Unlock()
	return c.sink.Close()
}

// onPlaybackFinished is the single entry point for engine completions.
func (c *Controller) onPlaybackFinished(id uint64, success bool) {
	c.update(func() {
		if id != c.playID || !c.playing {
			return
		}
		if !success {
			c.failLocked(fmt.Errorf("playback failed: %s", c.currentRefLocked()))
			return
		}

		switch c.phase {
		case PhaseIntro:
			c.introFinishedLocked()
		case PhaseReplyAudible, PhaseReplySilent:
			c.nextLocked()
		case PhaseWaitingManualReply, PhaseIdle:
			// only an explicit action moves on
		}
	})
}

func (c *Controller) introFinishedLocked() {
	if c.cursor >= len(c.enabled) {
		c.finishLocked()
		return
	}
	segment := c.enabled[c.cursor]
	reply := c.pendingReply

	if c.responsorial {
		switch {
		case reply == "":
			c.nextLocked()
		case c.autoVoiceReply:
			c.scheduleReplyLocked(reply)
		default:
			c.setPhaseLocked(PhaseWaitingManualReply)
			c.emitLocked(EventWaitingReply, c.segmentPayloadLocked(0, reply))
		}
		return
	}

	if reply == "" {
		c.nextLocked()
		return
	}
	if inverted(segment) {
		c.playReplyLocked(reply, 1, PhaseReplyAudible)
		return
	}
	c.playReplyLocked(reply, 0, PhaseReplySilent)
}

func (c *Controller) scheduleReplyLocked(reply string) {
	c.cancelReplyLocked()
	gen := c.replyGen
	c.logger.Debug().Dur("delay", c.replyDelay).Str("reply", reply).Msg("reply scheduled")
	c.replyTimer = c.afterFunc(c.replyDelay, func() {
		c.update(func() {
			if gen != c.replyGen || !c.playing || c.phase != PhaseIntro {
				return
			}
			c.replyTimer = nil
			c.playReplyLocked(reply, 1, PhaseReplyAudible)
		})
	})
}

func (c *Controller) cancelReplyLocked() {
	if c.replyTimer != nil {
		c.replyTimer.Stop()
		c.replyTimer = nil
	}
	c.replyGen++
}

func (c *Controller) playReplyLocked(reply string, volume float64, next Phase) {
	if err := c.playLocked(reply, volume); err != nil {
		c.failLocked(err)
		return
	}
	c.setPhaseLocked(next)
	c.emitLocked(EventReplyStarted, c.segmentPayloadLocked(volume, reply))
}

// playCurrentLocked plays the intro of the segment under the cursor.
func (c *Controller) playCurrentLocked() {
	if c.cursor >= len(c.enabled) {
		c.finishLocked()
		return
	}

	segment := c.enabled[c.cursor]
	c.pendingReply = segment.ReplyAudio
	c.errMsg = ""

	if segment.IntroAudio == "" {
		c.nextLocked()
		return
	}

	volume := introVolume(segment, c.responsorial)
	if err := c.playLocked(segment.IntroAudio, volume); err != nil {
		c.failLocked(err)
		return
	}
	c.setPhaseLocked(PhaseIntro)

	c.logger.Debug().
		Int("cursor", c.cursor).
		Int("order", segment.Order).
		Str("segment", segment.Title).
		Float64("volume", volume).
		Msg("segment started")
	c.emitLocked(EventSegmentStarted, c.segmentPayloadLocked(volume, segment.IntroAudio))
}

// playLocked is the only place audio starts. It releases the previous
// playback before loading ref.
func (c *Controller) playLocked(ref string, volume float64) error {
	c.engine.Stop()
	handle, err := c.engine.Load(ref)
	if err != nil {
		return err
	}
	c.playID++
	id := c.playID
	return c.engine.Play(handle, audio.PlayOptions{Volume: volume, Rate: c.rate}, func(success bool) {
		c.onPlaybackFinished(id, success)
	})
}

// stopAudioLocked releases the audio slot and returns to the transient idle
// phase.
func (c *Controller) stopAudioLocked() {
	c.cancelReplyLocked()
	c.engine.Stop()
	c.playID++
	c.pendingReply = ""
	c.setPhaseLocked(PhaseIdle)
}

// failLocked records a playback failure. Playback stays active so Resume
// retries the segment; with skipMissing the controller moves on.
func (c *Controller) failLocked(err error) {
	c.errMsg = err.Error()
	c.playID++
	c.setPhaseLocked(PhaseIdle)
	c.logger.Warn().Err(err).Int("cursor", c.cursor).Msg("audio failed")
	c.emitLocked(EventLoadFailed, c.segmentPayloadLocked(0, ""))
	if c.skipMissing {
		c.nextLocked()
	}
}

func (c *Controller) nextLocked() {
	c.stopAudioLocked()
	if c.cursor+1 >= len(c.enabled) {
		c.finishLocked()
		return
	}
	c.cursor++
	c.refreshLocked()
	if c.playing {
		c.playCurrentLocked()
	}
}

func (c *Controller) finishLocked() {
	wasSession := c.sessionStarted
	c.cancelReplyLocked()
	c.engine.Stop()
	c.playID++
	c.playing = false
	c.finished = true
	c.cursor = 0
	c.pendingReply = ""
	c.setPhaseLocked(PhaseIdle)
	c.presentation = sequences.RenderFinished()

	if wasSession {
		c.logger.Info().
			Str("session", c.sessionID).
			Dur("duration", time.Since(c.startedAt)).
			Msg("recitation finished")
		c.emitLocked(EventFinished, models.SessionFinishedPayload{
			Completed: true,
			Duration:  time.Since(c.startedAt).Round(time.Second).String(),
		})
		c.sessionStarted = false
	}
}

// endSessionLocked closes an open session without completing it.
func (c *Controller) endSessionLocked(reason string) {
	if !c.sessionStarted {
		return
	}
	c.logger.Info().
		Str("session", c.sessionID).
		Str("reason", reason).
		Msg("recitation abandoned")
	c.emitLocked(EventSessionEnded, models.SessionFinishedPayload{
		Completed: false,
		Duration:  time.Since(c.startedAt).Round(time.Second).String(),
		Reason:    reason,
	})
	c.sessionStarted = false
}

func (c *Controller) beginSessionLocked() {
	if c.sessionStarted {
		return
	}
	if !c.startedAt.IsZero() {
		c.sessionID = uuid.New().String()
	}
	c.sessionStarted = true
	c.startedAt = time.Now()
	c.emitLocked(EventSessionStarted, models.SessionStartedPayload{
		SequenceID:   c.seq.ID,
		Theme:        c.seq.Theme,
		Fingerprint:  sequences.Fingerprint(c.seq),
		Segments:     len(c.enabled),
		Responsorial: c.responsorial,
	})
}

func (c *Controller) setSequenceLocked(seq *models.Sequence) {
	c.seq = seq
	c.enabled = seq.EnabledSegments()
	c.nav = sequences.NavigationPoints(seq)
	c.cursor = 0
	c.pendingReply = ""
	c.setPhaseLocked(PhaseIdle)
	c.refreshLocked()
}

func (c *Controller) refreshLocked() {
	c.finished = false
	if c.cursor < len(c.enabled) {
		c.presentation = sequences.RenderSegment(c.enabled[c.cursor])
	}
}

func (c *Controller) setPhaseLocked(next Phase) {
	if !CanTransition(c.phase, next) {
		c.logger.Warn().
			Stringer("from", c.phase).
			Stringer("to", next).
			Msg("unexpected phase transition")
	}
	c.phase = next
}

func (c *Controller) currentRefLocked() string {
	if c.cursor >= len(c.enabled) {
		return ""
	}
	segment := c.enabled[c.cursor]
	if c.phase == PhaseIntro {
		return segment.IntroAudio
	}
	return segment.ReplyAudio
}

func (c *Controller) segmentPayloadLocked(volume float64, ref string) models.SegmentPayload {
	payload := models.SegmentPayload{
		Cursor:  c.cursor,
		Volume:  volume,
		Audio:   ref,
		Phase:   c.phase.String(),
		Message: c.errMsg,
	}
	if c.cursor < len(c.enabled) {
		segment := c.enabled[c.cursor]
		payload.Order = segment.Order
		payload.Kind = segment.Kind
		payload.Title = segment.Title
	}
	return payload
}

func (c *Controller) emitLocked(eventType string, data any) {
	c.outbox = append(c.outbox, PlaybackEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: c.sessionID,
		Data:      data,
	})
}

// update runs fn under the lock and queues its events and status. Delivery
// happens without holding mu, in the order the updates ran.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.pending = append(c.pending, delivery{events: c.outbox, status: c.statusLocked()})
	c.outbox = nil
	c.mu.Unlock()

	c.deliver()
}

// deliver drains the queue. A caller that finds publishMu held waits, and
// its own delivery may already have been sent by the holder.
func (c *Controller) deliver() {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, d := range batch {
		for _, event := range d.events {
			if err := c.sink.Emit(context.Background(), event); err != nil {
				c.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to emit playback event")
			}
		}
		if c.publisher != nil {
			c.publisher.Publish(d.status)
		}
	}
}

// introVolume mutes the pause marker and, in solo mode, the leader's line
// of inverted segments.
func introVolume(segment models.Segment, responsorial bool) float64 {
	if segment.IsPauseMarker() {
		return 0
	}
	if !responsorial && inverted(segment) {
		return 0
	}
	return 1
}

// inverted reports whether the reply carries the audible part in solo mode:
// Our Father and Hail Mary segments of the second and fourth mysteries.
func inverted(segment models.Segment) bool {
	if !segment.HasMystery() || segment.Kind == models.KindMysteryAnnouncement {
		return false
	}
	if segment.MysteryNumber != 2 && segment.MysteryNumber != 4 {
		return false
	}
	return segment.Kind == models.KindOurFather || segment.Kind == models.KindHailMary
}
