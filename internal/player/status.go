package player

import (
	"github.com/santorosario/rosario/internal/models"
)

// Status is the observable state published after every update.
type Status struct {
	SessionID  string       `json:"session_id"`
	SequenceID string       `json:"sequence_id"`
	Theme      models.Theme `json:"theme"`

	// Text and Image are the now-playing display text and illustration token.
	Text  string `json:"text"`
	Image string `json:"image"`

	Title string             `json:"title,omitempty"`
	Kind  models.SegmentKind `json:"kind,omitempty"`

	Cursor int   `json:"cursor"`
	Total  int   `json:"total"`
	Phase  Phase `json:"phase"`

	Playing        bool    `json:"playing"`
	Finished       bool    `json:"finished"`
	Responsorial   bool    `json:"responsorial"`
	AutoVoiceReply bool    `json:"auto_voice_reply"`
	Rate           float64 `json:"rate"`

	// Error is the last playback failure, cleared when a segment starts.
	Error string `json:"error,omitempty"`
}

// Progress returns the completed fraction of the enabled view.
func (s Status) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	if s.Finished {
		return 1
	}
	return float64(s.Cursor) / float64(s.Total)
}

// Mode returns the prayer mode name.
func (s Status) Mode() models.PrayerMode {
	if s.Responsorial {
		return models.PrayerModeResponsorial
	}
	return models.PrayerModeSolo
}

func (c *Controller) statusLocked() Status {
	status := Status{
		SessionID:      c.sessionID,
		SequenceID:     c.seq.ID,
		Theme:          c.seq.Theme,
		Text:           c.presentation.Text,
		Image:          c.presentation.Image,
		Cursor:         c.cursor,
		Total:          len(c.enabled),
		Phase:          c.phase,
		Playing:        c.playing,
		Finished:       c.finished,
		Responsorial:   c.responsorial,
		AutoVoiceReply: c.autoVoiceReply,
		Rate:           c.rate,
		Error:          c.errMsg,
	}
	if !c.finished && c.cursor < len(c.enabled) {
		segment := c.enabled[c.cursor]
		status.Title = segment.Title
		status.Kind = segment.Kind
	}
	return status
}
