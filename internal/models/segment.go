package models

// SegmentKind is the content type of a segment.
type SegmentKind string

const (
	KindSignOfCross         SegmentKind = "sign_of_cross"
	KindInitialPrayers      SegmentKind = "initial_prayers"
	KindVisita              SegmentKind = "visita"
	KindSpiritualCommunion  SegmentKind = "spiritual_communion"
	KindCreed               SegmentKind = "creed"
	KindOurFather           SegmentKind = "our_father"
	KindHailMary            SegmentKind = "hail_mary"
	KindGloryBe             SegmentKind = "glory_be"
	KindMysteryAnnouncement SegmentKind = "mystery_announcement"
	KindAspiration          SegmentKind = "aspiration"
	KindSalve               SegmentKind = "salve"
	KindTrinityHailMary     SegmentKind = "trinity_hail_mary"
	KindLitany              SegmentKind = "litany"
	KindClosingPrayer       SegmentKind = "closing_prayer"
	KindPetition            SegmentKind = "petition"
)

var kindLabels = map[SegmentKind]string{
	KindSignOfCross:         "Señal de la Cruz",
	KindInitialPrayers:      "Rezos Iniciales",
	KindVisita:              "La Visita",
	KindSpiritualCommunion:  "Comunión Espiritual",
	KindCreed:               "Credo",
	KindOurFather:           "Padre Nuestro",
	KindHailMary:            "Ave María",
	KindGloryBe:             "Gloria",
	KindMysteryAnnouncement: "Anuncio del Misterio",
	KindAspiration:          "Jaculatoria",
	KindSalve:               "Salve",
	KindTrinityHailMary:     "3 Avemarías (Trinidad)",
	KindLitany:              "Letanías",
	KindClosingPrayer:       "Oraciones Finales",
	KindPetition:            "Peticiones Finales",
}

// Label returns the display name of the kind.
func (k SegmentKind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return string(k)
}

// PauseMarker is the reserved title of the silent closing segment. Segments
// carrying it play their intro at zero volume.
const PauseMarker = "..."

// Segment is one atomic step of the recitation.
type Segment struct {
	// ID identifies the segment for the lifetime of its sequence.
	ID string `json:"id"`

	Kind  SegmentKind `json:"kind"`
	Title string      `json:"title"`

	// Order is the canonical playback position, unique within a sequence.
	Order int `json:"order"`

	// IntroAudio is the leader's clip. Empty means the segment is a
	// structural no-op that playback skips.
	IntroAudio string `json:"intro_audio,omitempty"`

	// ReplyAudio is the response clip, if any.
	ReplyAudio string `json:"reply_audio,omitempty"`

	// MysteryNumber and MysteryGroup are both set or both zero.
	MysteryNumber int   `json:"mystery_number,omitempty"`
	MysteryGroup  Theme `json:"mystery_group,omitempty"`

	Enabled bool `json:"enabled"`
}

// HasMystery reports whether the segment is tagged with a mystery.
func (s Segment) HasMystery() bool {
	return s.MysteryNumber != 0 && s.MysteryGroup != ""
}

// HasReply reports whether the segment carries reply audio.
func (s Segment) HasReply() bool {
	return s.ReplyAudio != ""
}

// IsPauseMarker reports whether the segment is the silent closing cue.
func (s Segment) IsPauseMarker() bool {
	return s.Title == PauseMarker
}

// Sequence is an ordered, immutable list of segments built from a
// configuration and theme.
type Sequence struct {
	ID       string    `json:"id"`
	Theme    Theme     `json:"theme"`
	Segments []Segment `json:"segments"`
}

// EnabledSegments returns the order-preserving view of enabled segments.
func (s *Sequence) EnabledSegments() []Segment {
	if s == nil {
		return nil
	}
	out := make([]Segment, 0, len(s.Segments))
	for _, segment := range s.Segments {
		if segment.Enabled {
			out = append(out, segment)
		}
	}
	return out
}

// FindSegment looks a segment up by ID.
func (s *Sequence) FindSegment(id string) (Segment, bool) {
	if s == nil {
		return Segment{}, false
	}
	for _, segment := range s.Segments {
		if segment.ID == id {
			return segment, true
		}
	}
	return Segment{}, false
}
