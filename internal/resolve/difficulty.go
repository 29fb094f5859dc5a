package resolve

import "strings"

// Tier labels used by the form's difficulty questions.
const (
	TierNone     = "none"
	HeroicCode   = "Heroic"
	HeroicLevel  = "1"
	CoarseNormal = "Standard"
	CoarseExpert = "Expert"
)

type marker struct {
	token string
	label string
}

// Ordered lowest to highest; the highest marker present wins.
var (
	standardMarkers = []marker{
		{"S1", "core"},
		{"S2", "Hood-II"},
		{"S3", "Apocalypse-III"},
	}
	expertMarkers = []marker{
		{"E1", "core"},
		{"E2", "Hood-II"},
	}
)

// Difficulty is a decoded difficulty code. Empty fields are left unanswered.
type Difficulty struct {
	Standard string
	Expert   string
	Heroic   string
}

// DecodeDifficulty maps a code such as "S2E1" or "Heroic" to tier labels.
// Tokens it does not recognize are ignored.
func DecodeDifficulty(code string) Difficulty {
	code = strings.TrimSpace(code)
	if strings.EqualFold(code, HeroicCode) {
		return Difficulty{Heroic: HeroicLevel}
	}
	upper := strings.ToUpper(code)
	return Difficulty{
		Standard: highest(upper, standardMarkers, standardMarkers[0].label),
		Expert:   highest(upper, expertMarkers, TierNone),
	}
}

// IsHeroic reports whether the code selects heroic mode.
func IsHeroic(code string) bool {
	return DecodeDifficulty(code).Heroic != ""
}

// CoarseTier returns the tier for scenarios that only ask standard or expert.
func CoarseTier(code string) string {
	upper := strings.ToUpper(code)
	for _, m := range expertMarkers {
		if strings.Contains(upper, m.token) {
			return CoarseExpert
		}
	}
	return CoarseNormal
}

func highest(code string, markers []marker, fallback string) string {
	label := fallback
	for _, m := range markers {
		if strings.Contains(code, m.token) {
			label = m.label
		}
	}
	return label
}
