// Package sequences builds recitation sequences and loads configuration
// profiles.
package sequences

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/santorosario/rosario/internal/models"
)

// Audio references used by the builder.
const (
	AudioSignOfCross         = "sign_of_cross.m4a"
	AudioCreed               = "creed.m4a"
	AudioVisitaPrayer        = "initial_prayer_visita.m4a"
	AudioSpiritualCommunion  = "spiritual_communion.m4a"
	AudioSignOfCrossExtended = "signal_cross_extended.m4a"
	AudioVocalPrayers        = "vocal_prayers.m4a"
	AudioOurFatherIntro      = "padre_nuestro_intro.m4a"
	AudioOurFatherReply      = "padre_nuestro_reply.m4a"
	AudioHailMaryIntro       = "ave_maria_intro.m4a"
	AudioHailMaryReply       = "ave_maria_reply.m4a"
	AudioGloryBeIntro        = "gloria_intro.m4a"
	AudioGloryBeReply        = "gloria_reply.m4a"
	AudioAspiration          = "jaculatoria.m4a"
	AudioSalve               = "salve.m4a"
	AudioLitanies            = "litanies.m4a"
	AudioFinalPrayers        = "final_prayers_lauretanas.m4a"
	AudioRestInPeace         = "rest_in_peace.m4a"
)

// Titles with meaning outside the builder.
const (
	TitleSalve       = "Salve"
	TitleRestInPeace = "Descansen en Paz"
)

// HailMarysPerDecade is the number of Hail Marys in each mystery block.
const HailMarysPerDecade = 10

var trinityTitles = [3]string{"Hija del Padre", "Madre del Hijo", "Esposa del Espíritu Santo"}

type petition struct {
	name    string
	audio   string
	gloryBe bool
}

// The souls petition has no Glory Be.
var petitions = []petition{
	{name: "Por la Iglesia", audio: "petition_church_intro.m4a", gloryBe: true},
	{name: "Por el Obispo", audio: "petition_bishop_intro.m4a", gloryBe: true},
	{name: "Por las Almas", audio: "petition_souls_intro.m4a", gloryBe: false},
}

// MysteryAudio returns the announcement clip for a mystery.
func MysteryAudio(theme models.Theme, number int) string {
	return fmt.Sprintf("mystery_%s_%d.m4a", theme.AudioKey(), number)
}

// MysteryTitle returns the announcement title for a mystery.
func MysteryTitle(mystery models.Mystery) string {
	return fmt.Sprintf("Misterio %d: %s", mystery.Number, mystery.Title)
}

// TrinityAudio returns the intro clip of the i-th (1-based) trinity Hail Mary.
func TrinityAudio(i int) string {
	return fmt.Sprintf("ave_maria_trinity_intro_%d.m4a", i)
}

type builder struct {
	order    int
	segments []models.Segment
}

func (b *builder) add(segment models.Segment) {
	segment.ID = uuid.New().String()
	segment.Order = b.order
	segment.Enabled = true
	b.segments = append(b.segments, segment)
	b.order++
}

func (b *builder) simple(kind models.SegmentKind, title, intro string) {
	b.add(models.Segment{Kind: kind, Title: title, IntroAudio: intro})
}

func (b *builder) ourFather(title string) {
	b.add(models.Segment{Kind: models.KindOurFather, Title: title, IntroAudio: AudioOurFatherIntro, ReplyAudio: AudioOurFatherReply})
}

func (b *builder) hailMary(title string) {
	b.add(models.Segment{Kind: models.KindHailMary, Title: title, IntroAudio: AudioHailMaryIntro, ReplyAudio: AudioHailMaryReply})
}

func (b *builder) gloryBe(title string) {
	b.add(models.Segment{Kind: models.KindGloryBe, Title: title, IntroAudio: AudioGloryBeIntro, ReplyAudio: AudioGloryBeReply})
}

// Build turns a configuration and theme into an ordered sequence. It never
// fails: every configuration yields at least the opening sign of the cross,
// the five mysteries, the Salve and the closing triplet.
func Build(cfg models.Configuration, theme models.Theme) *models.Sequence {
	b := &builder{}

	b.simple(models.KindSignOfCross, "Señal de la Cruz", AudioSignOfCross)

	if cfg.Creed {
		b.simple(models.KindCreed, "Credo", AudioCreed)
	}

	if cfg.Visita {
		for i := 1; i <= 3; i++ {
			prefix := fmt.Sprintf("Visita %d - ", i)
			b.simple(models.KindVisita, prefix+"Oración Inicial", AudioVisitaPrayer)
			b.ourFather(prefix + "Padre Nuestro")
			b.hailMary(prefix + "Ave María")
			b.gloryBe(prefix + "Gloria")
		}
		b.simple(models.KindSpiritualCommunion, "Comunión Espiritual", AudioSpiritualCommunion)
	}

	if cfg.InitialPrayers {
		b.simple(models.KindInitialPrayers, "Señal Cruz Extendida", AudioSignOfCrossExtended)
		b.simple(models.KindInitialPrayers, "Oraciones Vocales", AudioVocalPrayers)
	}

	if cfg.IntroPrayers {
		b.ourFather("Padre Nuestro (Inicio)")
		for i := 1; i <= 3; i++ {
			b.hailMary(fmt.Sprintf("Ave María %d", i))
		}
		b.gloryBe("Gloria")
	}

	for _, mystery := range models.MysteriesFor(theme) {
		tag := func(segment models.Segment) models.Segment {
			segment.MysteryNumber = mystery.Number
			segment.MysteryGroup = theme
			return segment
		}
		b.add(tag(models.Segment{Kind: models.KindMysteryAnnouncement, Title: MysteryTitle(mystery), IntroAudio: MysteryAudio(theme, mystery.Number)}))
		b.add(tag(models.Segment{Kind: models.KindOurFather, Title: "Padre Nuestro", IntroAudio: AudioOurFatherIntro, ReplyAudio: AudioOurFatherReply}))
		for i := 1; i <= HailMarysPerDecade; i++ {
			b.add(tag(models.Segment{Kind: models.KindHailMary, Title: fmt.Sprintf("Ave María %d", i), IntroAudio: AudioHailMaryIntro, ReplyAudio: AudioHailMaryReply}))
		}
		b.add(tag(models.Segment{Kind: models.KindGloryBe, Title: "Gloria", IntroAudio: AudioGloryBeIntro, ReplyAudio: AudioGloryBeReply}))
		b.add(tag(models.Segment{Kind: models.KindAspiration, Title: "Jaculatoria", IntroAudio: AudioAspiration}))
	}

	b.simple(models.KindSalve, TitleSalve, AudioSalve)

	if cfg.Trinity {
		for i, title := range trinityTitles {
			b.add(models.Segment{
				Kind:       models.KindTrinityHailMary,
				Title:      fmt.Sprintf("Ave María (%s)", title),
				IntroAudio: TrinityAudio(i + 1),
				ReplyAudio: AudioHailMaryReply,
			})
		}
	}

	if cfg.Litanies {
		b.simple(models.KindLitany, "Letanías", AudioLitanies)
	}

	if cfg.FinalPrayers {
		b.simple(models.KindClosingPrayer, "Oración Final (Lauretanas)", AudioFinalPrayers)
	}

	if cfg.Petitions {
		for _, p := range petitions {
			b.simple(models.KindPetition, p.name+" - Intención", p.audio)
			b.ourFather(p.name + " - Padre Nuestro")
			b.hailMary(p.name + " - Ave María")
			if p.gloryBe {
				b.gloryBe(p.name + " - Gloria")
			}
		}
	}

	b.simple(models.KindClosingPrayer, TitleRestInPeace, AudioRestInPeace)
	b.simple(models.KindClosingPrayer, models.PauseMarker, AudioRestInPeace)
	b.simple(models.KindSignOfCross, "Señal de la Cruz Final", AudioSignOfCross)

	return &models.Sequence{
		ID:       uuid.New().String(),
		Theme:    theme,
		Segments: b.segments,
	}
}
