package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santorosario/rosario/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	return database
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "rosario.db"))
	require.NoError(t, err)
	defer database.Close()

	applied, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), applied)

	applied, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)

	version, err := database.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].version, version)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestSettingsRepositoryDefaults(t *testing.T) {
	repo := NewSettingsRepository(setupTestDB(t))

	settings, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestSettingsRepositorySaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(setupTestDB(t))

	settings := models.DefaultSettings()
	settings.Mode = models.PrayerModeResponsorial
	settings.AutoVoiceReply = false
	settings.PlaybackRate = 1.25
	settings.Theme = models.ThemeLuminous
	settings.Configuration.Creed = true
	settings.Configuration.Visita = false

	require.NoError(t, repo.Save(ctx, settings))
	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)

	settings.PlaybackRate = 0.75
	require.NoError(t, repo.Save(ctx, settings))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.75, loaded.PlaybackRate)
}

func TestSettingsRepositoryRejectsInvalid(t *testing.T) {
	repo := NewSettingsRepository(setupTestDB(t))

	settings := models.DefaultSettings()
	settings.PlaybackRate = 9
	err := repo.Save(context.Background(), settings)
	require.Error(t, err)

	var validation *models.ValidationErrors
	assert.ErrorAs(t, err, &validation)
}

func TestSettingsRepositoryIgnoresBadRows(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	_, err := database.ExecContext(ctx, `INSERT INTO settings (key, value, updated_at) VALUES
		('mode', 'chanted', 'x'),
		('playback_rate', '1.5', 'x'),
		('mystery', 'yes', 'x')`)
	require.NoError(t, err)

	settings, err := NewSettingsRepository(database).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PrayerModeSolo, settings.Mode)
	assert.Equal(t, 1.5, settings.PlaybackRate)
}

func newSessionEvent(session string, eventType models.EventType, at time.Time) *models.Event {
	return &models.Event{
		Timestamp:  at,
		Type:       eventType,
		EntityType: models.EntityTypeSession,
		EntityID:   session,
	}
}

func TestEventRepositoryCreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	payload, err := json.Marshal(models.SegmentPayload{Cursor: 3, Title: "Ave María 1"})
	require.NoError(t, err)
	event := newSessionEvent("s1", models.EventTypeSegmentStarted, time.Time{})
	event.Payload = payload
	event.Metadata = map[string]string{"source": "test"}

	require.NoError(t, repo.Create(ctx, event))
	require.NotEmpty(t, event.ID)
	require.False(t, event.Timestamp.IsZero())

	got, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, "s1", got.EntityID)
	assert.JSONEq(t, string(payload), string(got.Payload))
	assert.Equal(t, "test", got.Metadata["source"])
	assert.True(t, event.Timestamp.Equal(got.Timestamp))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepositoryRejectsInvalid(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))

	err := repo.Append(context.Background(), &models.Event{Type: models.EventTypePaused})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	err = repo.Create(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEventRepositoryQueryPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, newSessionEvent("s1", models.EventTypeSegmentStarted, base.Add(time.Duration(i)*time.Millisecond))))
	}
	require.NoError(t, repo.Append(ctx, newSessionEvent("s2", models.EventTypePaused, base.Add(time.Second))))

	page, err := repo.Query(ctx, EventQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	require.NotEmpty(t, page.NextCursor)

	seen := len(page.Events)
	for page.NextCursor != "" {
		page, err = repo.Query(ctx, EventQuery{Limit: 2, Cursor: page.NextCursor})
		require.NoError(t, err)
		seen += len(page.Events)
	}
	assert.Equal(t, 6, seen)

	paused := models.EventTypePaused
	page, err = repo.Query(ctx, EventQuery{Type: &paused})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "s2", page.Events[0].EntityID)

	since := base.Add(3 * time.Millisecond)
	page, err = repo.Query(ctx, EventQuery{Since: &since})
	require.NoError(t, err)
	assert.Len(t, page.Events, 3)
}

func TestEventRepositoryListByEntity(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, newSessionEvent("s1", models.EventTypeSessionStarted, base)))
	require.NoError(t, repo.Append(ctx, newSessionEvent("s2", models.EventTypeSessionStarted, base)))
	require.NoError(t, repo.Append(ctx, newSessionEvent("s1", models.EventTypeFinished, base.Add(time.Minute))))

	events, err := repo.ListByEntity(ctx, models.EntityTypeSession, "s1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeSessionStarted, events[0].Type)
	assert.Equal(t, models.EventTypeFinished, events[1].Type)
}

func TestEventRepositoryListSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for _, event := range []*models.Event{
		newSessionEvent("old", models.EventTypeSessionStarted, base),
		newSessionEvent("old", models.EventTypeSegmentStarted, base.Add(time.Second)),
		newSessionEvent("old", models.EventTypeSegmentStarted, base.Add(2*time.Second)),
		newSessionEvent("old", models.EventTypeFinished, base.Add(3*time.Second)),
		newSessionEvent("new", models.EventTypeSessionStarted, base.Add(time.Hour)),
		newSessionEvent("new", models.EventTypeLoadFailed, base.Add(time.Hour+time.Second)),
	} {
		require.NoError(t, repo.Append(ctx, event))
	}

	sessions, err := repo.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "new", sessions[0].SessionID)
	assert.Equal(t, 1, sessions[0].Failures)
	assert.False(t, sessions[0].Completed)

	old := sessions[1]
	assert.Equal(t, "old", old.SessionID)
	assert.Equal(t, 4, old.EventCount)
	assert.Equal(t, 2, old.Segments)
	assert.True(t, old.Completed)
	assert.True(t, old.StartedAt.Equal(base))
	assert.Equal(t, 3*time.Second, old.LastAt.Sub(old.StartedAt))
}

func TestEventRepositoryPruneBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, newSessionEvent("s1", models.EventTypePaused, base)))
	require.NoError(t, repo.Append(ctx, newSessionEvent("s1", models.EventTypePaused, base.Add(48*time.Hour))))

	removed, err := repo.PruneBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
