package sequences

import (
	"strings"

	"github.com/santorosario/rosario/internal/models"
)

// Navigation labels.
const (
	NavStart     = "Inicio"
	NavLitanies  = "Letanías"
	NavPetitions = "Peticiones"
	NavClosing   = "Cierre"
)

// NavigationPoint is a jump target into the enabled view.
type NavigationPoint struct {
	Label string `json:"label"`
	Index int    `json:"index"`
}

// NavigationPoints lists the jump targets of a sequence: its start, each
// mystery announcement, the first litany, the first petition and the closing
// acclamation. Indexes refer to the enabled view.
func NavigationPoints(seq *models.Sequence) []NavigationPoint {
	enabled := seq.EnabledSegments()
	if len(enabled) == 0 {
		return nil
	}

	points := []NavigationPoint{{Label: NavStart, Index: 0}}
	seen := map[string]struct{}{NavStart: {}}
	addOnce := func(label string, index int) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		points = append(points, NavigationPoint{Label: label, Index: index})
	}

	for i, segment := range enabled {
		switch {
		case segment.Kind == models.KindMysteryAnnouncement:
			addOnce(strings.TrimPrefix(segment.Title, "Misterio de "), i)
		case segment.Kind == models.KindLitany:
			addOnce(NavLitanies, i)
		case segment.Kind == models.KindPetition:
			addOnce(NavPetitions, i)
		case segment.Kind == models.KindClosingPrayer && segment.Title == TitleRestInPeace:
			addOnce(NavClosing, i)
		}
	}

	return points
}
