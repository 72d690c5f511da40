package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/santorosario/rosario/internal/audio"
	"github.com/santorosario/rosario/internal/config"
	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/events"
	"github.com/santorosario/rosario/internal/logging"
	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/sequences"
)

// playbackOptions are the per-command overrides of saved settings.
type playbackOptions struct {
	Simulate     bool
	Responsorial bool
	Solo         bool
	NoAutoVoice  bool
	Rate         float64

	Publishers []player.Publisher
	Sinks      []player.EventSink
}

// playbackRuntime owns the database, engine and controller of one run.
type playbackRuntime struct {
	database   *db.DB
	settings   models.Settings
	engine     audio.Engine
	controller *player.Controller
	tracker    *sessionTracker
	logger     zerolog.Logger
}

func newPlaybackRuntime(ctx context.Context, opts playbackOptions) (*playbackRuntime, error) {
	cfg := GetConfig()

	settings, err := loadPlaybackSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings = applyPlaybackOverrides(settings, opts)

	engine, err := newEngine(cfg, opts.Simulate)
	if err != nil {
		return nil, err
	}

	step := startProgress("Opening session log")
	database, err := openDatabase()
	if err != nil {
		step.Fail(err)
		return nil, err
	}
	step.Done()

	tracker := &sessionTracker{}
	sinks := append([]player.EventSink{player.NewDatabaseEventSink(database), tracker}, opts.Sinks...)

	controllerLogger := logging.Component("player")
	controllerOpts := player.OptionsFromSettings(settings)
	controllerOpts.ReplyDelay = cfg.Playback.ReplyDelay
	controllerOpts.SkipMissingAudio = cfg.Playback.SkipMissingAudio
	controllerOpts.Sink = player.MultiSink(sinks)
	controllerOpts.Publisher = fanOut(opts.Publishers)
	controllerOpts.Logger = &controllerLogger

	logger := logging.Component("cli")
	seq := sequences.Build(settings.Configuration, settings.Theme)
	if _, simulated := engine.(*audio.SimulatedEngine); !simulated {
		library := audio.Library{Dir: cfg.Media.Dir, Extension: cfg.Media.Extension}
		if missing := library.Missing(audioRefs(seq)); len(missing) > 0 {
			logger.Warn().
				Str("media_dir", cfg.Media.Dir).
				Int("count", len(missing)).
				Strs("refs", missing).
				Msg("audio clips missing from media library")
		}
	}

	return &playbackRuntime{
		database:   database,
		settings:   settings,
		engine:     engine,
		controller: player.New(seq, engine, controllerOpts),
		tracker:    tracker,
		logger:     logger,
	}, nil
}

// audioRefs lists the clips the enabled segments of seq will load.
func audioRefs(seq *models.Sequence) []string {
	var refs []string
	for _, segment := range seq.EnabledSegments() {
		refs = append(refs, segment.IntroAudio, segment.ReplyAudio)
	}
	return refs
}

// Close stops playback, records an interrupted session and closes the
// database.
func (r *playbackRuntime) Close() error {
	closeErr := r.controller.Close()

	if sessionID, elapsed, open := r.tracker.openSession(); open {
		repo := db.NewEventRepository(r.database)
		if err := events.LogSessionFinished(context.Background(), repo, sessionID, elapsed, "interrupted"); err != nil {
			r.logger.Warn().Err(err).Msg("failed to record interrupted session")
		}
	}

	if err := r.database.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

func (r *playbackRuntime) logError(err error, where string) {
	if err == nil {
		return
	}
	repo := db.NewEventRepository(r.database)
	if logErr := events.LogError(context.Background(), repo, err, where); logErr != nil {
		r.logger.Warn().Err(logErr).Msg("failed to record error")
	}
}

func applyPlaybackOverrides(settings models.Settings, opts playbackOptions) models.Settings {
	switch {
	case opts.Responsorial:
		settings.Mode = models.PrayerModeResponsorial
	case opts.Solo:
		settings.Mode = models.PrayerModeSolo
	}
	if opts.NoAutoVoice {
		settings.AutoVoiceReply = false
	}
	if opts.Rate > 0 {
		settings.PlaybackRate = opts.Rate
	}
	return settings
}

func newEngine(cfg *config.Config, simulate bool) (audio.Engine, error) {
	library := audio.Library{Dir: cfg.Media.Dir, Extension: cfg.Media.Extension}

	if simulate || cfg.Audio.Backend == config.BackendSimulated {
		engine := audio.NewSimulatedEngine(cfg.Audio.SimulatedClip)
		if engine.Clip <= 0 {
			engine.Clip = config.DefaultConfig().Audio.SimulatedClip
		}
		return engine, nil
	}

	engine, err := audio.NewProcessEngine(library, cfg.Audio.Player, logging.Component("audio"))
	if err != nil {
		return nil, fmt.Errorf("audio.player: %w", err)
	}
	return engine, nil
}

func fanOut(publishers []player.Publisher) player.Publisher {
	var active []player.Publisher
	for _, p := range publishers {
		if p != nil {
			active = append(active, p)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return player.PublisherFunc(func(status player.Status) {
		for _, p := range active {
			p.Publish(status)
		}
	})
}

// sessionTracker remembers whether the current session reached its end.
type sessionTracker struct {
	mu        sync.Mutex
	sessionID string
	startedAt time.Time
	open      bool
}

func (t *sessionTracker) Emit(ctx context.Context, event player.PlaybackEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Type {
	case player.EventSessionStarted:
		t.sessionID = event.SessionID
		t.startedAt = event.Timestamp
		if t.startedAt.IsZero() {
			t.startedAt = time.Now()
		}
		t.open = true
	case player.EventFinished, player.EventSessionEnded:
		t.open = false
	}
	return nil
}

func (t *sessionTracker) Close() error {
	return nil
}

func (t *sessionTracker) openSession() (string, time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return "", 0, false
	}
	return t.sessionID, time.Since(t.startedAt), true
}
