package resolve

import "testing"

func TestTablesLookups(t *testing.T) {
	tables := DefaultTables()
	if got := tables.HeroLabel("Spider-Man"); got != "Spider-Man (Peter Parker)" {
		t.Fatalf("unexpected hero label %q", got)
	}
	if got := tables.HeroLabel("Unknown Hero"); got != "Unknown Hero" {
		t.Fatalf("expected passthrough, got %q", got)
	}
	if !tables.SkipsAspect("adam warlock") {
		t.Fatalf("expected Adam Warlock to skip the aspect question")
	}
	if !tables.DualAspect("Spider-Woman") {
		t.Fatalf("expected Spider-Woman to use a dual aspect")
	}
	if !tables.SkipsModulars("wrecking crew") {
		t.Fatalf("expected The Wrecking Crew to skip modulars")
	}
	if tables.AltDifficulty("Rhino") {
		t.Fatalf("expected Rhino to use the standard difficulty scheme")
	}
}

func TestTablesMerge(t *testing.T) {
	base := DefaultTables()
	merged := base.Merge(Tables{
		Heroes:             map[string]string{"spider-man": "Spider-Man"},
		NoModularScenarios: NewSet("Rhino"),
	})
	if got := merged.HeroLabel("spider-man"); got != "Spider-Man" {
		t.Fatalf("expected override, got %q", got)
	}
	if !merged.SkipsModulars("Rhino") || !merged.SkipsModulars("The Wrecking Crew") {
		t.Fatalf("expected merged exception set")
	}
	if base.SkipsModulars("Rhino") {
		t.Fatalf("merge mutated the base tables")
	}
}
