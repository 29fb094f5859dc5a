package resolve

import (
	"sort"
	"strings"
)

var aspectKeywords = []struct {
	name     string
	keywords []string
}{
	{"Aggression", []string{"aggression", "aggro"}},
	{"Justice", []string{"justice"}},
	{"Leadership", []string{"leadership"}},
	{"Protection", []string{"protection"}},
}

// DualAspect derives the combined label for a hero that plays two aspects,
// such as "Aggression and Justice". Names are ordered alphabetically. A single
// aspect mentioned twice gives "Justice and Justice". When raw does not name
// exactly one pair, it is returned unchanged with ok false.
func DualAspect(raw string) (label string, ok bool) {
	lower := strings.ToLower(raw)
	var found []string
	for _, family := range aspectKeywords {
		count := 0
		for _, kw := range family.keywords {
			count += strings.Count(lower, kw)
		}
		switch {
		case count >= 2:
			found = append(found, family.name, family.name)
		case count == 1:
			found = append(found, family.name)
		}
	}
	if len(found) != 2 {
		return raw, false
	}
	sort.Strings(found)
	return found[0] + " and " + found[1], true
}
