package resolve

import (
	"strings"

	"golang.org/x/text/cases"
)

// Match picks the label to click for want: an exact label if present,
// otherwise the first label containing want, ignoring case.
func Match(labels []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	if want == "" {
		return "", false
	}
	for _, l := range labels {
		if l == want {
			return l, true
		}
	}
	folder := cases.Fold()
	needle := folder.String(want)
	for _, l := range labels {
		if strings.Contains(folder.String(l), needle) {
			return l, true
		}
	}
	return "", false
}
