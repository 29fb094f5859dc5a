package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/playlog/internal/model"
	"github.com/verte-zerg/playlog/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "playlog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.BeginRun(ctx, model.RunMeta{
			StartedAt: time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			InputPath: "plays.json",
			Workers:   2,
		})
		if err != nil {
			t.Fatalf("begin run: %v", err)
		}
		if err := st.RecordOutcome(ctx, id, model.Outcome{RecordID: "r1", State: "load", Cause: "timeout"}); err != nil {
			t.Fatalf("record outcome: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Runs[0].RunID != ids[1] || report.Runs[1].RunID != ids[2] {
		t.Fatalf("unexpected run ids: %+v", report.Runs)
	}
	if report.Failures != nil {
		t.Fatalf("expected no failures without a run id")
	}

	cfg := model.HistoryConfig{RunID: ids[0]}
	report, err = BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 1 || len(report.Failures) != 1 {
		t.Fatalf("unexpected single-run report: %+v", report)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, cfg, 5); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Failed records in run "+ids[0]) {
		t.Fatalf("missing failures section:\n%s", buf.String())
	}
}
