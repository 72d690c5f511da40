// Package events provides helper functions for recording Rosario events
// outside the playback stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santorosario/rosario/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// SettingsUpdatedPayload is the payload for settings.updated events.
type SettingsUpdatedPayload struct {
	Mode           models.PrayerMode `json:"mode"`
	AutoVoiceReply bool              `json:"auto_voice_reply"`
	PlaybackRate   float64           `json:"playback_rate"`
	Theme          models.Theme      `json:"theme,omitempty"`
	Options        []string          `json:"options"`
}

// LogSettingsUpdated records a change of the persisted settings.
func LogSettingsUpdated(ctx context.Context, repo Repository, settings models.Settings) error {
	payload := SettingsUpdatedPayload{
		Mode:           settings.Mode,
		AutoVoiceReply: settings.AutoVoiceReply,
		PlaybackRate:   settings.PlaybackRate,
		Theme:          settings.Theme,
		Options:        settings.Configuration.EnabledKeys(),
	}
	return create(ctx, repo, models.EventTypeSettingsUpdated, models.EntityTypeSettings, "settings", payload)
}

// LogSessionFinished records the end of a session that did not reach the
// last segment, such as an interrupted run.
func LogSessionFinished(ctx context.Context, repo Repository, sessionID string, elapsed time.Duration, reason string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	payload := models.SessionFinishedPayload{
		Completed: false,
		Duration:  elapsed.Round(time.Second).String(),
		Reason:    reason,
	}
	return create(ctx, repo, models.EventTypeSessionFinished, models.EntityTypeSession, sessionID, payload)
}

// LogError records a system error with optional context.
func LogError(ctx context.Context, repo Repository, cause error, where string) error {
	if cause == nil {
		return fmt.Errorf("error is required")
	}
	payload := models.ErrorPayload{Error: cause.Error(), Context: where}
	return create(ctx, repo, models.EventTypeError, models.EntityTypeSystem, "rosario", payload)
}

func create(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	}
	return repo.Create(ctx, event)
}
