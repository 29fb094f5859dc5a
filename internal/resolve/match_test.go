package resolve

import "testing"

func TestMatch(t *testing.T) {
	labels := []string{"Spider-Man (Miles Morales)", "Spider-Man (Peter Parker)", "Spider-Woman"}
	cases := []struct {
		want  string
		label string
		ok    bool
	}{
		{"Spider-Woman", "Spider-Woman", true},
		{"spider-man", "Spider-Man (Miles Morales)", true},
		{"PETER", "Spider-Man (Peter Parker)", true},
		{"Hulk", "", false},
		{"  ", "", false},
	}
	for _, tc := range cases {
		got, ok := Match(labels, tc.want)
		if got != tc.label || ok != tc.ok {
			t.Fatalf("Match(%q) = (%q, %v), want (%q, %v)", tc.want, got, ok, tc.label, tc.ok)
		}
	}
}

func TestMatchPrefersExact(t *testing.T) {
	labels := []string{"Rhino (Expert)", "Rhino"}
	if got, _ := Match(labels, "Rhino"); got != "Rhino" {
		t.Fatalf("expected exact label, got %q", got)
	}
}
