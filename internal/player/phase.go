package player

import "fmt"

// Phase is the playback state of the current segment.
type Phase int

const (
	// PhaseIdle is both the initial and the finished state, and the
	// transient state between segments.
	PhaseIdle Phase = iota
	// PhaseIntro means the leader's clip is playing, or the automatic reply
	// is scheduled.
	PhaseIntro
	PhaseReplyAudible
	PhaseReplySilent
	// PhaseWaitingManualReply blocks until RespondNow.
	PhaseWaitingManualReply
)

var phaseNames = map[Phase]string{
	PhaseIdle:               "idle",
	PhaseIntro:              "intro",
	PhaseReplyAudible:       "reply_audible",
	PhaseReplySilent:        "reply_silent",
	PhaseWaitingManualReply: "waiting_manual_reply",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText encodes the phase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// transitions lists the phases reachable from each phase. Any phase may
// return to idle.
var transitions = map[Phase][]Phase{
	PhaseIdle:               {PhaseIdle, PhaseIntro},
	PhaseIntro:              {PhaseIdle, PhaseReplyAudible, PhaseReplySilent, PhaseWaitingManualReply},
	PhaseReplyAudible:       {PhaseIdle},
	PhaseReplySilent:        {PhaseIdle},
	PhaseWaitingManualReply: {PhaseIdle, PhaseReplyAudible},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
