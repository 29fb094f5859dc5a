package records

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRecordsJSON(t *testing.T) {
	path := writeFile(t, "plays.json", `[
  {"id": "p1", "date": "2024-02-03", "scenario": "Rhino", "difficulty": "S1E1",
   "multiplayer": false, "solo": true,
   "heroes": [{"hero": "spider-man", "aspect": "Justice", "win": 1}],
   "modulars": ["Bomb Scare"]}
]`)
	recs, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.ID != "p1" || r.Scenario != "Rhino" || r.Difficulty != "S1E1" || !r.Solo {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Date.Format(DateLayout) != "2024-02-03" {
		t.Fatalf("unexpected date: %v", r.Date)
	}
	if !r.Heroes[0].Won() || r.Modulars[0] != "Bomb Scare" {
		t.Fatalf("unexpected heroes/modulars: %+v", r)
	}
}

func TestLoadRecordsYAML(t *testing.T) {
	path := writeFile(t, "plays.yaml", `
- id: p1
  date: "2024-02-03"
  scenario: Klaw
  difficulty: S2E2
  multiplayer: true
  heroes:
    - {hero: hulk, aspect: Aggression, win: 0}
    - {hero: thor, aspect: Justice, win: 0}
  modulars: [Masters of Evil]
`)
	recs, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs[0].Heroes) != 2 || !recs[0].Multiplayer {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

func TestLoadRecordsRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no heroes": `[{"id": "a", "date": "2024-01-01", "heroes": []}]`,
		"bad win":   `[{"id": "a", "date": "2024-01-01", "heroes": [{"hero": "x", "aspect": "Justice", "win": 2}]}]`,
		"bad date":  `[{"id": "a", "date": "2024-13-01", "heroes": [{"hero": "x", "aspect": "Justice", "win": 1}]}]`,
		"duplicate": `[{"id": "a", "date": "2024-01-01", "heroes": [{"hero": "x", "aspect": "Justice", "win": 1}]},
		               {"id": "a", "date": "2024-01-02", "heroes": [{"hero": "x", "aspect": "Justice", "win": 1}]}]`,
		"five heroes": `[{"id": "a", "date": "2024-01-01", "heroes": [
			{"hero": "a", "aspect": "Justice", "win": 1}, {"hero": "b", "aspect": "Justice", "win": 1},
			{"hero": "c", "aspect": "Justice", "win": 1}, {"hero": "d", "aspect": "Justice", "win": 1},
			{"hero": "e", "aspect": "Justice", "win": 1}]}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRecords(writeFile(t, "plays.json", body))
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestLoadRecordsEmpty(t *testing.T) {
	if _, err := LoadRecords(writeFile(t, "plays.json", `[]`)); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
