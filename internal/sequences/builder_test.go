package sequences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santorosario/rosario/internal/models"
)

func allOptions() models.Configuration {
	cfg := models.DefaultConfiguration()
	cfg.Creed = true
	return cfg
}

func everyConfiguration() []models.Configuration {
	options := models.ConfigurationOptions()
	configs := make([]models.Configuration, 0, 1<<len(options))
	for mask := 0; mask < 1<<len(options); mask++ {
		var cfg models.Configuration
		for i, opt := range options {
			opt.Set(&cfg, mask&(1<<i) != 0)
		}
		configs = append(configs, cfg)
	}
	return configs
}

func countKind(segments []models.Segment, kind models.SegmentKind) int {
	n := 0
	for _, segment := range segments {
		if segment.Kind == kind {
			n++
		}
	}
	return n
}

func TestBuildOrderStrictlyIncreasing(t *testing.T) {
	for _, cfg := range everyConfiguration() {
		seq := Build(cfg, models.ThemeSorrowful)
		ids := make(map[string]struct{}, len(seq.Segments))
		for i, segment := range seq.Segments {
			if i > 0 && segment.Order <= seq.Segments[i-1].Order {
				t.Fatalf("order not strictly increasing at %d for %+v", i, cfg)
			}
			if _, dup := ids[segment.ID]; dup {
				t.Fatalf("duplicate segment id %s", segment.ID)
			}
			ids[segment.ID] = struct{}{}
		}
	}
}

func TestBuildMinimalConfiguration(t *testing.T) {
	seq := Build(models.Configuration{}, models.ThemeJoyful)

	enabled := seq.EnabledSegments()
	require.Len(t, enabled, 75)
	assert.Equal(t, models.KindSignOfCross, enabled[0].Kind)
	assert.Equal(t, models.KindSalve, enabled[71].Kind)
	assert.Equal(t, 0, enabled[0].Order)
	assert.Equal(t, 74, enabled[74].Order)
}

func TestBuildFullConfiguration(t *testing.T) {
	seq := Build(allOptions(), models.ThemeGlorious)
	assert.Len(t, seq.Segments, 112)
	assert.Equal(t, models.ThemeGlorious, seq.Theme)
	assert.NotEmpty(t, seq.ID)
}

func TestBuildBlockSizes(t *testing.T) {
	base := len(Build(models.Configuration{}, models.ThemeJoyful).Segments)

	tests := []struct {
		option string
		want   int
	}{
		{"creed", 1},
		{"visita", 13},
		{"initial_prayers", 2},
		{"intro_prayers", 5},
		{"trinity", 3},
		{"litanies", 1},
		{"final_prayers", 1},
		{"petitions", 11},
	}

	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			var cfg models.Configuration
			require.NoError(t, cfg.SetOption(tt.option, true))
			got := len(Build(cfg, models.ThemeJoyful).Segments) - base
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildCentralBlock(t *testing.T) {
	for _, cfg := range []models.Configuration{{}, allOptions()} {
		for _, theme := range models.AllThemes() {
			seq := Build(cfg, theme)
			tagged := 0
			perMystery := map[int]int{}
			for _, segment := range seq.Segments {
				if !segment.HasMystery() {
					assert.Zero(t, segment.MysteryNumber)
					assert.Empty(t, segment.MysteryGroup)
					continue
				}
				tagged++
				perMystery[segment.MysteryNumber]++
				assert.Equal(t, theme, segment.MysteryGroup)
				_, ok := models.LookupMystery(segment.MysteryGroup, segment.MysteryNumber)
				assert.True(t, ok)
			}
			assert.Equal(t, 70, tagged)
			for n := 1; n <= 5; n++ {
				assert.Equal(t, 14, perMystery[n], "mystery %d", n)
			}
		}
	}
}

func TestBuildMysteryAnnouncements(t *testing.T) {
	seq := Build(models.Configuration{}, models.ThemeLuminous)

	var announcements []models.Segment
	for _, segment := range seq.Segments {
		if segment.Kind == models.KindMysteryAnnouncement {
			announcements = append(announcements, segment)
		}
	}
	require.Len(t, announcements, 5)
	for i, segment := range announcements {
		assert.Equal(t, i+1, segment.MysteryNumber)
		assert.Equal(t, MysteryAudio(models.ThemeLuminous, i+1), segment.IntroAudio)
		assert.Empty(t, segment.ReplyAudio)
	}
	assert.Equal(t, "Misterio 2: Bodas de Caná", announcements[1].Title)
	assert.Equal(t, "mystery_luminosos_2.m4a", announcements[1].IntroAudio)
}

func TestBuildClosingTriplet(t *testing.T) {
	for _, cfg := range everyConfiguration() {
		seq := Build(cfg, models.ThemeJoyful)
		n := len(seq.Segments)
		last := seq.Segments[n-3:]

		if last[0].Title != TitleRestInPeace || last[0].IntroAudio != AudioRestInPeace {
			t.Fatalf("unexpected closing acclamation %+v", last[0])
		}
		if !last[1].IsPauseMarker() || last[1].IntroAudio != AudioRestInPeace || last[1].Kind != last[0].Kind {
			t.Fatalf("unexpected pause marker %+v", last[1])
		}
		if last[2].Kind != models.KindSignOfCross {
			t.Fatalf("unexpected final segment %+v", last[2])
		}
		if got := countKind(seq.Segments, models.KindSalve); got != 1 {
			t.Fatalf("expected one salve, got %d", got)
		}
	}
}

func TestBuildPetitionsOmitFinalGloryBe(t *testing.T) {
	var cfg models.Configuration
	cfg.Petitions = true
	seq := Build(cfg, models.ThemeJoyful)

	// sign of the cross, 70 central segments, salve
	block := seq.Segments[72 : len(seq.Segments)-3]
	require.Len(t, block, 11)

	groups := [][]models.Segment{block[0:4], block[4:8], block[8:11]}
	assert.Equal(t, models.KindGloryBe, groups[0][3].Kind)
	assert.Equal(t, models.KindGloryBe, groups[1][3].Kind)
	assert.Equal(t, 0, countKind(groups[2], models.KindGloryBe))
	assert.Equal(t, "Por las Almas - Intención", groups[2][0].Title)
	assert.Equal(t, models.KindHailMary, groups[2][2].Kind)
}

func TestBuildTrinityAudio(t *testing.T) {
	var cfg models.Configuration
	cfg.Trinity = true
	seq := Build(cfg, models.ThemeJoyful)

	var trinity []models.Segment
	for _, segment := range seq.Segments {
		if segment.Kind == models.KindTrinityHailMary {
			trinity = append(trinity, segment)
		}
	}
	require.Len(t, trinity, 3)
	intros := map[string]struct{}{}
	for _, segment := range trinity {
		intros[segment.IntroAudio] = struct{}{}
		assert.Equal(t, AudioHailMaryReply, segment.ReplyAudio)
	}
	assert.Len(t, intros, 3)
}

func TestBuildVisitaBlock(t *testing.T) {
	var cfg models.Configuration
	cfg.Visita = true
	seq := Build(cfg, models.ThemeJoyful)

	block := seq.Segments[1:14]
	for cycle := 0; cycle < 3; cycle++ {
		kinds := []models.SegmentKind{models.KindVisita, models.KindOurFather, models.KindHailMary, models.KindGloryBe}
		for i, kind := range kinds {
			assert.Equal(t, kind, block[cycle*4+i].Kind)
		}
	}
	assert.Equal(t, models.KindSpiritualCommunion, block[12].Kind)
}

func TestBuildRoundTrip(t *testing.T) {
	for _, theme := range models.AllThemes() {
		first := Build(allOptions(), theme)
		second := Build(allOptions(), theme)

		require.Len(t, second.Segments, len(first.Segments))
		assert.NotEqual(t, first.ID, second.ID)
		for i := range first.Segments {
			a, b := first.Segments[i], second.Segments[i]
			assert.NotEqual(t, a.ID, b.ID)
			a.ID, b.ID = "", ""
			assert.Equal(t, a, b)
		}
		assert.Equal(t, Fingerprint(first), Fingerprint(second))
	}
}

func TestFingerprintDiffers(t *testing.T) {
	joyful := Build(models.Configuration{}, models.ThemeJoyful)
	sorrowful := Build(models.Configuration{}, models.ThemeSorrowful)
	assert.NotEqual(t, Fingerprint(joyful), Fingerprint(sorrowful))
	assert.Len(t, Fingerprint(joyful), 64)

	joyful.Segments[3].Enabled = false
	assert.NotEqual(t, Fingerprint(joyful), Fingerprint(Build(models.Configuration{}, models.ThemeJoyful)))
}
