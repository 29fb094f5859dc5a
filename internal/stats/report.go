package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/playlog/internal/model"
	"github.com/verte-zerg/playlog/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs []model.RunAggregate
	// Failures is filled only when a single run is selected.
	Failures []model.Outcome
}

// BuildReport loads the runs selected by cfg and, for a single run, its failures.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	report := Report{Runs: runs}
	if cfg.RunID == "" {
		return report, nil
	}
	report.Failures, err = st.ListFailures(ctx, cfg.RunID)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// Render prints the report: the run table, then the failures of a selected run.
func (r Report) Render(w io.Writer, cfg model.HistoryConfig, window int) error {
	if err := RenderHistory(w, r.Runs, window); err != nil {
		return err
	}
	if cfg.RunID == "" || len(r.Runs) == 0 {
		return nil
	}
	return RenderFailures(w, cfg.RunID, r.Failures)
}
