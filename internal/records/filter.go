package records

import (
	"sort"
	"time"

	"github.com/verte-zerg/playlog/internal/model"
)

// FilterOptions controls which records are kept for a run.
type FilterOptions struct {
	// Since drops records dated before it when set (inclusive bound).
	Since *time.Time
	// NoModularScenario reports scenarios whose form has no modular page.
	NoModularScenario func(scenario string) bool
}

type rejectReason int

const (
	keep rejectReason = iota
	rejectAspect
	rejectModulars
	rejectDate
)

// Filter drops records the form cannot take and sorts the rest by date.
// Ties keep their input order.
func Filter(recs []model.Record, opts FilterOptions) ([]model.Record, model.FilterReport) {
	report := model.FilterReport{Total: len(recs)}
	kept := make([]model.Record, 0, len(recs))
	for _, rec := range recs {
		switch classify(rec, opts) {
		case rejectAspect:
			report.RejectedAspect++
		case rejectModulars:
			report.RejectedModulars++
		case rejectDate:
			report.RejectedDate++
		default:
			kept = append(kept, rec)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date)
	})
	return kept, report
}

func classify(rec model.Record, opts FilterOptions) rejectReason {
	for _, h := range rec.Heroes {
		if h.Aspect == model.NoAspect {
			return rejectAspect
		}
	}
	if len(rec.Modulars) == 0 && (opts.NoModularScenario == nil || !opts.NoModularScenario(rec.Scenario)) {
		return rejectModulars
	}
	if opts.Since != nil && rec.Date.Before(*opts.Since) {
		return rejectDate
	}
	return keep
}
