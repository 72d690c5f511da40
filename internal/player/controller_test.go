package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santorosario/rosario/internal/audio"
	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/sequences"
)

func TestSoloModeInversion(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.JumpTo(2)
	h.ctrl.Start()

	// first mystery: leader audible, reply silent
	first := h.engine.last()
	assert.Equal(t, sequences.AudioOurFatherIntro, first.Ref)
	assert.Equal(t, 1.0, first.Volume)
	assert.Equal(t, PhaseIntro, h.ctrl.Status().Phase)

	require.True(t, h.engine.complete(true))
	reply := h.engine.last()
	assert.Equal(t, sequences.AudioOurFatherReply, reply.Ref)
	assert.Equal(t, 0.0, reply.Volume)
	assert.Equal(t, PhaseReplySilent, h.ctrl.Status().Phase)

	require.True(t, h.engine.complete(true))
	assert.Equal(t, 3, h.ctrl.Status().Cursor)
	assert.Equal(t, 1.0, h.engine.last().Volume)

	// second mystery: leader muted, reply audible
	h.ctrl.JumpTo(16)
	intro := h.engine.last()
	assert.Equal(t, sequences.AudioOurFatherIntro, intro.Ref)
	assert.Equal(t, 0.0, intro.Volume)

	require.True(t, h.engine.complete(true))
	reply = h.engine.last()
	assert.Equal(t, sequences.AudioOurFatherReply, reply.Ref)
	assert.Equal(t, 1.0, reply.Volume)
	assert.Equal(t, PhaseReplyAudible, h.ctrl.Status().Phase)

	h.ctrl.JumpTo(17)
	assert.Equal(t, sequences.AudioHailMaryIntro, h.engine.last().Ref)
	assert.Equal(t, 0.0, h.engine.last().Volume)

	// the Glory Be and the announcement are never inverted
	h.ctrl.JumpTo(27)
	assert.Equal(t, sequences.AudioGloryBeIntro, h.engine.last().Ref)
	assert.Equal(t, 1.0, h.engine.last().Volume)

	h.ctrl.JumpTo(15)
	assert.Equal(t, sequences.MysteryAudio(models.ThemeJoyful, 2), h.engine.last().Ref)
	assert.Equal(t, 1.0, h.engine.last().Volume)
	require.True(t, h.engine.complete(true))
	assert.Equal(t, 16, h.ctrl.Status().Cursor)
}

func TestResponsorialModeIgnoresInversion(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
	})

	h.ctrl.JumpTo(16)
	h.ctrl.Start()
	assert.Equal(t, 1.0, h.engine.last().Volume)
}

func TestResponsorialAutoReply(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
	})

	h.ctrl.Start()
	// the sign of the cross has no reply and advances immediately
	require.True(t, h.engine.complete(true))
	assert.Equal(t, 1, h.ctrl.Status().Cursor)
	assert.Empty(t, h.clock.pending())

	h.ctrl.JumpTo(2)
	require.True(t, h.engine.complete(true))

	pending := h.clock.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, time.Second, pending[0].delay)
	assert.Equal(t, PhaseIntro, h.ctrl.Status().Phase)
	plays := h.engine.count()

	require.Equal(t, 1, h.clock.fireAll())
	assert.Equal(t, plays+1, h.engine.count())
	assert.Equal(t, sequences.AudioOurFatherReply, h.engine.last().Ref)
	assert.Equal(t, 1.0, h.engine.last().Volume)
	assert.Equal(t, PhaseReplyAudible, h.ctrl.Status().Phase)

	require.True(t, h.engine.complete(true))
	status := h.ctrl.Status()
	assert.Equal(t, 3, status.Cursor)
	assert.Equal(t, PhaseIntro, status.Phase)
}

func TestPauseCancelsScheduledReply(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
		opts.ReplyDelay = 250 * time.Millisecond
	})

	h.ctrl.JumpTo(2)
	h.ctrl.Start()
	require.True(t, h.engine.complete(true))

	pending := h.clock.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 250*time.Millisecond, pending[0].delay)

	h.ctrl.Pause()
	assert.True(t, pending[0].stopped)
	plays := h.engine.count()

	// a timer that raced the pause must not play the reply
	pending[0].fn()
	assert.Equal(t, plays, h.engine.count())

	status := h.ctrl.Status()
	assert.False(t, status.Playing)
	assert.Equal(t, 2, status.Cursor)
	assert.Equal(t, PhaseIdle, status.Phase)

	// resuming replays the intro from the start
	h.ctrl.Resume()
	assert.Equal(t, sequences.AudioOurFatherIntro, h.engine.last().Ref)
	assert.Equal(t, PhaseIntro, h.ctrl.Status().Phase)
}

func TestManualReply(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
		opts.AutoVoiceReply = false
	})

	h.ctrl.JumpTo(3)
	h.ctrl.Start()

	// not waiting yet
	h.ctrl.RespondNow()
	assert.Equal(t, 1, h.engine.count())

	require.True(t, h.engine.complete(true))
	assert.Equal(t, PhaseWaitingManualReply, h.ctrl.Status().Phase)
	assert.Empty(t, h.clock.pending())
	assert.Contains(t, h.sink.types(), EventWaitingReply)
	assert.False(t, h.engine.complete(true))

	h.ctrl.RespondNow()
	assert.Equal(t, sequences.AudioHailMaryReply, h.engine.last().Ref)
	assert.Equal(t, 1.0, h.engine.last().Volume)
	assert.Equal(t, PhaseReplyAudible, h.ctrl.Status().Phase)

	require.True(t, h.engine.complete(true))
	assert.Equal(t, 4, h.ctrl.Status().Cursor)
}

func TestSetResponsorialWhileWaiting(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
		opts.AutoVoiceReply = false
	})

	h.ctrl.JumpTo(16)
	h.ctrl.Start()
	require.True(t, h.engine.complete(true))
	require.Equal(t, PhaseWaitingManualReply, h.ctrl.Status().Phase)
	plays := h.engine.count()

	h.ctrl.SetResponsorial(false)
	status := h.ctrl.Status()
	assert.False(t, status.Responsorial)
	assert.Equal(t, PhaseIntro, status.Phase)
	assert.Equal(t, 16, status.Cursor)
	assert.Equal(t, plays+1, h.engine.count())
	assert.Equal(t, sequences.AudioOurFatherIntro, h.engine.last().Ref)
	assert.Equal(t, 0.0, h.engine.last().Volume)

	h.ctrl.ToggleResponsorial()
	assert.True(t, h.ctrl.Status().Responsorial)
	assert.Equal(t, 1.0, h.engine.last().Volume)
}

func TestSetAutoVoiceReplyAffectsFutureCompletions(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.Responsorial = true
		opts.AutoVoiceReply = false
	})

	h.ctrl.JumpTo(2)
	h.ctrl.Start()
	plays := h.engine.count()

	h.ctrl.ToggleAutoVoiceReply()
	assert.True(t, h.ctrl.Status().AutoVoiceReply)
	assert.Equal(t, plays, h.engine.count())

	require.True(t, h.engine.complete(true))
	assert.Len(t, h.clock.pending(), 1)
}

func TestNextPastEndFinishes(t *testing.T) {
	h := newHarness(t, nil)
	total := h.ctrl.Status().Total
	require.Equal(t, 75, total)

	h.ctrl.JumpTo(total - 1)
	h.ctrl.Start()
	h.ctrl.Next()

	status := h.ctrl.Status()
	assert.True(t, status.Finished)
	assert.False(t, status.Playing)
	assert.Equal(t, 0, status.Cursor)
	assert.Equal(t, PhaseIdle, status.Phase)
	assert.Equal(t, sequences.FinishedText, status.Text)
	assert.Equal(t, sequences.FinishedImage, status.Image)
	assert.Equal(t, 1.0, status.Progress())

	types := h.sink.types()
	assert.Equal(t, EventSessionStarted, types[0])
	assert.Equal(t, EventFinished, types[len(types)-1])

	// the next run starts a fresh session at the beginning
	firstSession := status.SessionID
	h.ctrl.Start()
	status = h.ctrl.Status()
	assert.False(t, status.Finished)
	assert.True(t, status.Playing)
	assert.Equal(t, 0, status.Cursor)
	assert.NotEqual(t, firstSession, status.SessionID)
}

func TestFinishesAfterLastCompletion(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.JumpTo(h.ctrl.Status().Total - 1)
	h.ctrl.Start()
	require.True(t, h.engine.complete(true))
	assert.True(t, h.ctrl.Status().Finished)
}

func TestPreviousAtStartIsNoop(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	plays := h.engine.count()
	h.ctrl.Previous()

	status := h.ctrl.Status()
	assert.Equal(t, 0, status.Cursor)
	assert.Equal(t, PhaseIntro, status.Phase)
	assert.Equal(t, plays, h.engine.count())

	h.ctrl.Next()
	h.ctrl.Previous()
	assert.Equal(t, 0, h.ctrl.Status().Cursor)
	assert.Equal(t, sequences.AudioSignOfCross, h.engine.last().Ref)
}

func TestNavigationWhilePausedDoesNotPlay(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Next()
	h.ctrl.Next()
	h.ctrl.Previous()
	h.ctrl.JumpTo(40)
	h.ctrl.JumpTo(500)

	status := h.ctrl.Status()
	assert.Equal(t, 40, status.Cursor)
	assert.False(t, status.Playing)
	assert.Zero(t, h.engine.count())
	assert.Equal(t, "Ave María 10", status.Title)
}

func TestJumpOutOfRangeKeepsPlaying(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	h.engine.mu.Lock()
	stops := h.engine.stops
	h.engine.mu.Unlock()

	h.ctrl.JumpTo(500)
	h.ctrl.JumpTo(-1)

	status := h.ctrl.Status()
	assert.True(t, status.Playing)
	assert.Equal(t, PhaseIntro, status.Phase)
	assert.Equal(t, 0, status.Cursor)
	h.engine.mu.Lock()
	assert.Equal(t, stops, h.engine.stops)
	h.engine.mu.Unlock()

	// the clip is still live and completes normally
	require.True(t, h.engine.complete(true))
	assert.Equal(t, 1, h.ctrl.Status().Cursor)
}

func TestLoadFailureKeepsPlaybackActive(t *testing.T) {
	h := newHarness(t, nil)
	h.engine.missing[sequences.AudioSignOfCross] = true

	h.ctrl.Start()
	status := h.ctrl.Status()
	assert.True(t, status.Playing)
	assert.Equal(t, 0, status.Cursor)
	assert.Equal(t, PhaseIdle, status.Phase)
	assert.Contains(t, status.Error, sequences.AudioSignOfCross)
	assert.Contains(t, h.sink.types(), EventLoadFailed)

	h.ctrl.Next()
	status = h.ctrl.Status()
	assert.Empty(t, status.Error)
	assert.Equal(t, PhaseIntro, status.Phase)
	assert.Equal(t, sequences.MysteryAudio(models.ThemeJoyful, 1), h.engine.last().Ref)
}

func TestSkipMissingAudio(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.SkipMissingAudio = true
	})
	h.engine.missing[sequences.AudioSignOfCross] = true

	h.ctrl.Start()
	status := h.ctrl.Status()
	assert.Equal(t, 1, status.Cursor)
	assert.Equal(t, PhaseIntro, status.Phase)
	assert.Contains(t, h.sink.types(), EventLoadFailed)
}

func TestFailedCompletionIsReported(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	require.True(t, h.engine.complete(false))

	status := h.ctrl.Status()
	assert.Equal(t, 0, status.Cursor)
	assert.NotEmpty(t, status.Error)
	assert.Equal(t, PhaseIdle, status.Phase)
}

func TestStaleCompletionIgnored(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	stale := h.engine.call(0)
	h.ctrl.Next()
	plays := h.engine.count()

	stale.done(true)
	assert.Equal(t, plays, h.engine.count())
	assert.Equal(t, 1, h.ctrl.Status().Cursor)
	assert.Equal(t, PhaseIntro, h.ctrl.Status().Phase)
}

func TestPauseMarkerPlaysSilently(t *testing.T) {
	for _, responsorial := range []bool{false, true} {
		h := newHarness(t, func(opts *Options) {
			opts.Responsorial = responsorial
		})

		h.ctrl.JumpTo(73)
		require.Equal(t, models.PauseMarker, h.ctrl.Status().Title)
		h.ctrl.Start()
		assert.Equal(t, 0.0, h.engine.last().Volume, "responsorial=%v", responsorial)

		h.ctrl.Previous()
		assert.Equal(t, sequences.TitleRestInPeace, h.ctrl.Status().Title)
		assert.Equal(t, 1.0, h.engine.last().Volume)
	}
}

func TestSegmentWithoutIntroIsSkipped(t *testing.T) {
	seq := &models.Sequence{ID: "custom", Theme: models.ThemeGlorious, Segments: []models.Segment{
		{ID: "a", Kind: models.KindSignOfCross, Title: "Señal de la Cruz", Order: 0, Enabled: true},
		{ID: "b", Kind: models.KindSalve, Title: "Salve", Order: 1, Enabled: false, IntroAudio: sequences.AudioSalve},
		{ID: "c", Kind: models.KindCreed, Title: "Credo", Order: 2, Enabled: true, IntroAudio: sequences.AudioCreed},
	}}
	engine := newFakeEngine()
	logger := zerolog.Nop()
	ctrl := New(seq, engine, Options{Logger: &logger, AfterFunc: (&manualClock{}).AfterFunc})
	defer ctrl.Close()

	assert.Equal(t, 2, ctrl.Status().Total)
	ctrl.Start()
	assert.Equal(t, 1, ctrl.Status().Cursor)
	assert.Equal(t, sequences.AudioCreed, engine.last().Ref)
}

func TestEmptySequenceFinishesImmediately(t *testing.T) {
	engine := newFakeEngine()
	ctrl := New(nil, engine, DefaultOptions())
	defer ctrl.Close()

	ctrl.Start()
	status := ctrl.Status()
	assert.True(t, status.Finished)
	assert.False(t, status.Playing)
	assert.Zero(t, engine.count())
	assert.Empty(t, ctrl.NavigationPoints())
}

func TestSetRate(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.SetRate(1.5)
	h.ctrl.Start()
	assert.Equal(t, 1.5, h.engine.last().Rate)
	assert.Equal(t, 1.5, h.ctrl.Status().Rate)

	h.ctrl.SetRate(0)
	h.ctrl.Next()
	assert.Equal(t, 1.0, h.engine.last().Rate)
}

func TestTogglePlay(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.TogglePlay()
	assert.True(t, h.ctrl.Status().Playing)
	h.ctrl.TogglePlay()
	assert.False(t, h.ctrl.Status().Playing)
	assert.Contains(t, h.sink.types(), EventPaused)
}

func TestUpdateSequence(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.JumpTo(30)
	h.ctrl.Start()

	full := sequences.Build(models.DefaultConfiguration(), models.ThemeSorrowful)
	h.ctrl.UpdateSequence(full)

	status := h.ctrl.Status()
	assert.False(t, status.Playing)
	assert.Equal(t, 0, status.Cursor)
	assert.Equal(t, 111, status.Total)
	assert.Equal(t, models.ThemeSorrowful, status.Theme)
	assert.Equal(t, full.ID, status.SequenceID)
	assert.Same(t, full, h.ctrl.Sequence())

	nav := h.ctrl.NavigationPoints()
	require.NotEmpty(t, nav)
	assert.Equal(t, sequences.NavClosing, nav[len(nav)-1].Label)
	assert.Equal(t, 108, nav[len(nav)-1].Index)
}

func TestUpdateSequenceStartsNewSession(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	previous := h.ctrl.Sequence()
	previousSession := h.ctrl.Status().SessionID

	full := sequences.Build(models.DefaultConfiguration(), models.ThemeSorrowful)
	h.ctrl.UpdateSequence(full)
	h.ctrl.Resume()

	h.sink.mu.Lock()
	events := append([]PlaybackEvent(nil), h.sink.events...)
	h.sink.mu.Unlock()

	var started []PlaybackEvent
	var ended []PlaybackEvent
	for _, event := range events {
		switch event.Type {
		case EventSessionStarted:
			started = append(started, event)
		case EventSessionEnded:
			ended = append(ended, event)
		}
	}
	require.Len(t, started, 2)
	require.Len(t, ended, 1)

	first := started[0].Data.(models.SessionStartedPayload)
	assert.Equal(t, previous.ID, first.SequenceID)
	assert.Equal(t, 75, first.Segments)

	second := started[1].Data.(models.SessionStartedPayload)
	assert.Equal(t, full.ID, second.SequenceID)
	assert.Equal(t, 111, second.Segments)
	assert.Equal(t, sequences.Fingerprint(full), second.Fingerprint)
	assert.NotEqual(t, previousSession, started[1].SessionID)
	assert.Equal(t, started[1].SessionID, h.ctrl.Status().SessionID)

	assert.Equal(t, previousSession, ended[0].SessionID)
	closed := ended[0].Data.(models.SessionFinishedPayload)
	assert.False(t, closed.Completed)
	assert.Equal(t, ReasonSequenceChanged, closed.Reason)
	assert.NotContains(t, h.sink.types(), EventFinished)
}

func TestUpdateSequenceWithoutSessionEmitsNothing(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.UpdateSequence(sequences.Build(models.Configuration{}, models.ThemeLuminous))
	assert.Empty(t, h.sink.types())
}

func TestPublisherReceivesStatus(t *testing.T) {
	var mu sync.Mutex
	var statuses []Status
	h := newHarness(t, func(opts *Options) {
		opts.Publisher = PublisherFunc(func(status Status) {
			mu.Lock()
			defer mu.Unlock()
			statuses = append(statuses, status)
		})
	})

	h.ctrl.Start()
	h.ctrl.Next()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, statuses, 2)
	assert.Equal(t, 0, statuses[0].Cursor)
	assert.Equal(t, 1, statuses[1].Cursor)
	assert.Equal(t, "Misterio 1: Anunciación", statuses[1].Title)
}

func TestPublishOrderFollowsUpdates(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var cursors []int
	h := newHarness(t, func(opts *Options) {
		opts.Publisher = PublisherFunc(func(status Status) {
			if status.Cursor == 1 {
				once.Do(func() {
					close(entered)
					<-release
				})
			}
			mu.Lock()
			defer mu.Unlock()
			cursors = append(cursors, status.Cursor)
		})
	})

	first := make(chan struct{})
	go func() {
		h.ctrl.Next()
		close(first)
	}()
	<-entered

	second := make(chan struct{})
	go func() {
		h.ctrl.Next()
		close(second)
	}()
	require.Eventually(t, func() bool { return h.ctrl.Status().Cursor == 2 }, time.Second, time.Millisecond)

	close(release)
	for _, done := range []chan struct{}{first, second} {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("update did not return")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, cursors)
}

func TestSinkEventsCarrySession(t *testing.T) {
	h := newHarness(t, func(opts *Options) {
		opts.SessionID = "session-1"
	})

	h.ctrl.Start()
	require.True(t, h.engine.complete(true))

	h.sink.mu.Lock()
	events := append([]PlaybackEvent(nil), h.sink.events...)
	h.sink.mu.Unlock()

	require.Len(t, events, 3)
	assert.Equal(t, EventSessionStarted, events[0].Type)
	assert.Equal(t, EventSegmentStarted, events[1].Type)
	assert.Equal(t, EventSegmentStarted, events[2].Type)
	for _, event := range events {
		assert.Equal(t, "session-1", event.SessionID)
	}

	started, ok := events[0].Data.(models.SessionStartedPayload)
	require.True(t, ok)
	assert.Equal(t, 75, started.Segments)
	assert.NotEmpty(t, started.Fingerprint)

	segment, ok := events[2].Data.(models.SegmentPayload)
	require.True(t, ok)
	assert.Equal(t, 1, segment.Cursor)
	assert.Equal(t, models.KindMysteryAnnouncement, segment.Kind)
}

func TestCloseStopsPlayback(t *testing.T) {
	h := newHarness(t, nil)

	h.ctrl.Start()
	require.NoError(t, h.ctrl.Close())
	assert.True(t, h.sink.closed)
	assert.False(t, h.ctrl.Status().Playing)

	plays := h.engine.count()
	h.ctrl.Resume()
	assert.Equal(t, plays, h.engine.count())
	require.NoError(t, h.ctrl.Close())
}

func TestOptionsFromSettings(t *testing.T) {
	settings := models.DefaultSettings()
	settings.Mode = models.PrayerModeResponsorial
	settings.AutoVoiceReply = false
	settings.PlaybackRate = 0

	opts := OptionsFromSettings(settings)
	assert.True(t, opts.Responsorial)
	assert.False(t, opts.AutoVoiceReply)
	assert.Equal(t, 1.0, opts.Rate)
	assert.Equal(t, time.Second, opts.ReplyDelay)
}

func TestFullRunWithSimulatedEngine(t *testing.T) {
	engine := audio.NewSimulatedEngine(time.Millisecond)
	logger := zerolog.Nop()
	seq := sequences.Build(models.Configuration{}, models.ThemeGlorious)
	ctrl := New(seq, engine, Options{Logger: &logger, Rate: 2})
	defer ctrl.Close()

	ctrl.Start()
	require.Eventually(t, func() bool {
		return ctrl.Status().Finished
	}, 10*time.Second, 5*time.Millisecond)

	// every segment plays its intro; the sixty decade prayers add a reply
	history := engine.History()
	assert.Len(t, history, 75+60)
	assert.Equal(t, sequences.AudioSignOfCross, history[0].Ref)
	assert.Equal(t, sequences.AudioSignOfCross, history[len(history)-1].Ref)
	for _, playback := range history {
		assert.Equal(t, 2.0, playback.Rate)
	}
}

func TestDatabaseEventSink(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	defer database.Close()
	_, err = database.MigrateUp(ctx)
	require.NoError(t, err)

	at := time.Date(2026, 5, 13, 21, 0, 0, 0, time.UTC)
	sink := NewDatabaseEventSink(database)
	require.NoError(t, sink.Emit(ctx, PlaybackEvent{Type: EventSessionStarted, Timestamp: at, SessionID: "s1", Data: models.SessionStartedPayload{Segments: 75}}))
	require.NoError(t, sink.Emit(ctx, PlaybackEvent{Type: EventLoadFailed, Timestamp: at.Add(time.Second), SessionID: "s1"}))
	require.NoError(t, sink.Close())

	events, err := db.NewEventRepository(database).ListByEntity(ctx, models.EntityTypeSession, "s1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeSessionStarted, events[0].Type)
	assert.Equal(t, models.EventTypeLoadFailed, events[1].Type)

	assert.Error(t, NewDatabaseEventSink(nil).Emit(ctx, PlaybackEvent{Type: EventPaused, SessionID: "s1"}))
}

func TestPlaybackEventType(t *testing.T) {
	tests := map[string]models.EventType{
		EventSessionStarted: models.EventTypeSessionStarted,
		EventSessionEnded:   models.EventTypeSessionFinished,
		EventFinished:       models.EventTypeFinished,
		EventReplyStarted:   models.EventTypeReplyStarted,
		"playback.paused":   models.EventTypePaused,
		"":                  models.EventType("playback.unknown"),
	}
	for in, want := range tests {
		assert.Equal(t, want, playbackEventType(in), in)
	}
}
