package sequences

import (
	"fmt"

	"github.com/santorosario/rosario/internal/models"
)

// Completion presentation.
const (
	FinishedText  = "Rosario completado."
	FinishedImage = "img_final"
)

// Presentation is what a now-playing surface shows for a segment.
type Presentation struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// RenderSegment derives display text and an illustration token from a
// segment. Mystery-tagged segments show the mystery description.
func RenderSegment(segment models.Segment) Presentation {
	return Presentation{
		Text:  displayText(segment),
		Image: illustration(segment),
	}
}

// RenderFinished is shown once the recitation completes.
func RenderFinished() Presentation {
	return Presentation{Text: FinishedText, Image: FinishedImage}
}

func displayText(segment models.Segment) string {
	if segment.HasMystery() {
		if mystery, ok := models.LookupMystery(segment.MysteryGroup, segment.MysteryNumber); ok {
			return mystery.Description
		}
	}
	label := segment.Kind.Label()
	if label == segment.Title {
		return segment.Title
	}
	return fmt.Sprintf("%s\n%s", label, segment.Title)
}

func illustration(segment models.Segment) string {
	if segment.HasMystery() {
		return fmt.Sprintf("img_%s_%d", segment.MysteryGroup, segment.MysteryNumber)
	}

	switch segment.Kind {
	case models.KindSignOfCross, models.KindCreed, models.KindInitialPrayers,
		models.KindVisita, models.KindSpiritualCommunion, models.KindMysteryAnnouncement:
		return "img_intro"
	case models.KindLitany:
		return "img_litanies"
	case models.KindSalve:
		return "img_salve"
	case models.KindClosingPrayer, models.KindPetition, models.KindTrinityHailMary:
		return "img_final"
	default:
		return "img_default"
	}
}
