// Package resolve maps record fields to the labels the form shows.
//
// Everything here is a pure function over read-only Tables, so a single
// Tables value is shared by every session without locking.
package resolve

import "strings"

// Set is a read-only set of names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[strings.TrimSpace(n)] = struct{}{}
	}
	return s
}

// Has reports whether any of names is in the set.
func (s Set) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := s[n]; ok {
			return true
		}
	}
	return false
}

// Tables holds the static lookup data used to fill the form.
type Tables struct {
	// Heroes maps record hero names to form labels.
	Heroes map[string]string
	// Scenarios maps record scenario names to form labels.
	Scenarios map[string]string
	// Modulars maps record modular set names to form labels.
	Modulars map[string]string

	NoAspectHeroes         Set
	DualAspectHeroes       Set
	NoModularScenarios     Set
	AltDifficultyScenarios Set
}

// HeroLabel returns the form label for a hero.
func (t Tables) HeroLabel(hero string) string {
	return lookup(t.Heroes, hero)
}

// ScenarioLabel returns the form label for a scenario.
func (t Tables) ScenarioLabel(scenario string) string {
	return lookup(t.Scenarios, scenario)
}

// ModularLabel returns the form label for a modular set.
func (t Tables) ModularLabel(modular string) string {
	return lookup(t.Modulars, modular)
}

// SkipsAspect reports heroes whose form page has no aspect question.
func (t Tables) SkipsAspect(hero string) bool {
	return t.NoAspectHeroes.Has(hero, t.HeroLabel(hero))
}

// DualAspect reports heroes that take a combined two-aspect label.
func (t Tables) DualAspect(hero string) bool {
	return t.DualAspectHeroes.Has(hero, t.HeroLabel(hero))
}

// SkipsModulars reports scenarios that have no modular page.
func (t Tables) SkipsModulars(scenario string) bool {
	return t.NoModularScenarios.Has(scenario, t.ScenarioLabel(scenario))
}

// AltDifficulty reports scenarios that use the coarse difficulty question.
func (t Tables) AltDifficulty(scenario string) bool {
	return t.AltDifficultyScenarios.Has(scenario, t.ScenarioLabel(scenario))
}

// Merge returns a copy of t with the entries of o added on top.
func (t Tables) Merge(o Tables) Tables {
	return Tables{
		Heroes:                 mergeMap(t.Heroes, o.Heroes),
		Scenarios:              mergeMap(t.Scenarios, o.Scenarios),
		Modulars:               mergeMap(t.Modulars, o.Modulars),
		NoAspectHeroes:         mergeSet(t.NoAspectHeroes, o.NoAspectHeroes),
		DualAspectHeroes:       mergeSet(t.DualAspectHeroes, o.DualAspectHeroes),
		NoModularScenarios:     mergeSet(t.NoModularScenarios, o.NoModularScenarios),
		AltDifficultyScenarios: mergeSet(t.AltDifficultyScenarios, o.AltDifficultyScenarios),
	}
}

func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	if v, ok := m[strings.ToLower(key)]; ok {
		return v
	}
	return key
}

func mergeMap(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func mergeSet(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// DefaultTables returns the built-in lookup tables.
func DefaultTables() Tables {
	return Tables{
		Heroes: map[string]string{
			"spider-man":      "Spider-Man (Peter Parker)",
			"spiderman":       "Spider-Man (Peter Parker)",
			"miles":           "Spider-Man (Miles Morales)",
			"miles morales":   "Spider-Man (Miles Morales)",
			"ms marvel":       "Ms. Marvel",
			"captain marvel":  "Captain Marvel",
			"she-hulk":        "She-Hulk",
			"iron man":        "Iron Man",
			"black panther":   "Black Panther (T'Challa)",
			"shuri":           "Black Panther (Shuri)",
			"doctor strange":  "Doctor Strange",
			"dr strange":      "Doctor Strange",
			"ant man":         "Ant-Man",
			"antman":          "Ant-Man",
			"star lord":       "Star-Lord",
			"starlord":        "Star-Lord",
			"spider woman":    "Spider-Woman",
			"spiderwoman":     "Spider-Woman",
			"adam warlock":    "Adam Warlock",
			"scarlet witch":   "Scarlet Witch",
			"captain america": "Captain America",
			"cap":             "Captain America",
			"black widow":     "Black Widow",
			"ghost spider":    "Ghost-Spider",
			"spider ham":      "Spider-Ham",
			"sp//dr":          "SP//dr",
			"wolverine":       "Wolverine",
			"jubilee":         "Jubilee",
			"nightcrawler":    "Nightcrawler",
			"phoenix":         "Phoenix",
			"cyclops":         "Cyclops",
			"storm":           "Storm",
			"gambit":          "Gambit",
			"rogue":           "Rogue",
			"war machine":     "War Machine",
			"valkyrie":        "Valkyrie",
			"vision":          "Vision",
			"rocket":          "Rocket Raccoon",
			"groot":           "Groot",
			"gamora":          "Gamora",
			"drax":            "Drax",
			"venom":           "Venom",
			"nova":            "Nova",
			"ironheart":       "Ironheart",
			"hawkeye":         "Hawkeye",
			"quicksilver":     "Quicksilver",
			"wasp":            "Wasp",
			"hulk":            "Hulk",
			"thor":            "Thor",
		},
		Scenarios: map[string]string{
			"rhino":           "Rhino",
			"klaw":            "Klaw",
			"ultron":          "Ultron",
			"green goblin":    "Risky Business (Green Goblin)",
			"risky business":  "Risky Business (Green Goblin)",
			"mutagen formula": "Mutagen Formula (Green Goblin)",
			"wrecking crew":   "The Wrecking Crew",
			"crossbones":      "Crossbones",
			"absorbing man":   "Absorbing Man",
			"taskmaster":      "Taskmaster",
			"zola":            "Zola",
			"red skull":       "Red Skull",
			"kang":            "Kang",
			"drang":           "Brotherhood of Badoon (Drang)",
			"collector 1":     "Infiltrate the Museum (Collector)",
			"collector 2":     "Escape the Museum (Collector)",
			"nebula":          "Nebula",
			"ronan":           "Ronan the Accuser",
			"ebony maw":       "Ebony Maw",
			"tower defense":   "Tower Defense",
			"thanos":          "Thanos",
			"hela":            "Hela",
			"loki":            "Loki",
			"sandman":         "Sandman",
			"venom":           "Venom",
			"mysterio":        "Mysterio",
			"sinister six":    "The Sinister Six",
			"venom goblin":    "Venom Goblin",
			"mojo":            "Mojo Mania",
			"magneto":         "Magneto",
			"apocalypse":      "Apocalypse",
		},
		Modulars: map[string]string{
			"bomb scare":       "Bomb Scare",
			"masters of evil":  "The Masters of Evil",
			"under attack":     "Under Attack",
			"legions of hydra": "Legions of Hydra",
			"doomsday chair":   "The Doomsday Chair",
		},
		NoAspectHeroes:         NewSet("Adam Warlock"),
		DualAspectHeroes:       NewSet("Spider-Woman"),
		NoModularScenarios:     NewSet("The Wrecking Crew", "Mojo Mania", "Kang"),
		AltDifficultyScenarios: NewSet("The Wrecking Crew", "Kang"),
	}
}
