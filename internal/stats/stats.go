package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/playlog/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SuccessRate returns the share of processed records that succeeded, 0..1.
func SuccessRate(succeeded, failed int) float64 {
	total := succeeded + failed
	if total == 0 {
		return 0
	}
	return float64(succeeded) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

// RenderFilterReport prints the counts from filtering before a run.
func RenderFilterReport(w io.Writer, r model.FilterReport) error {
	lines := []string{
		fmt.Sprintf("Records in file:            %d", r.Total),
		fmt.Sprintf("Skipped, no aspect:         %d", r.RejectedAspect),
		fmt.Sprintf("Skipped, no modular sets:   %d", r.RejectedModulars),
		fmt.Sprintf("Skipped, before start date: %d", r.RejectedDate),
		fmt.Sprintf("Records to submit:          %d", r.Kept()),
		"",
	}
	return writeLines(w, lines)
}

// RenderRunSummary prints the final aggregate of a run.
func RenderRunSummary(w io.Writer, s model.Summary) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions:  %d", s.Sessions),
		fmt.Sprintf("Processed: %d", s.Processed()),
		fmt.Sprintf("Succeeded: %d", s.Succeeded),
		fmt.Sprintf("Failed:    %d", s.Failed),
	}
	if s.Abandoned > 0 {
		lines = append(lines, fmt.Sprintf("Abandoned: %d", s.Abandoned))
	}
	lines = append(lines,
		fmt.Sprintf("Elapsed:   %s", formatDuration(s.Elapsed)),
		fmt.Sprintf("Avg/record: %s", formatDuration(s.AvgPerRecord())),
	)
	return writeLines(w, lines)
}

// RenderHistory prints one row per run and a sparkline of success rates
// smoothed over window runs.
func RenderHistory(w io.Writer, runs []model.RunAggregate, window int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	headers := []string{"Run", "Started", "File", "Mode", "Workers", "OK", "Failed", "Abandoned", "Success", "Took"}
	rows := make([][]string, 0, len(runs))
	rates := make([]float64, 0, len(runs))
	for _, r := range runs {
		rate := SuccessRate(r.Succeeded, r.Failed)
		rates = append(rates, rate*100)
		mode := "submit"
		if r.DryRun {
			mode = "dry-run"
		}
		rows = append(rows, []string{
			shortID(r.RunID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.InputPath,
			mode,
			fmt.Sprintf("%d", r.Workers),
			fmt.Sprintf("%d", r.Succeeded),
			fmt.Sprintf("%d", r.Failed),
			fmt.Sprintf("%d", r.Abandoned),
			fmt.Sprintf("%.1f%%", rate*100),
			formatDuration(time.Duration(r.DurationMs) * time.Millisecond),
		})
	}
	rightAlign := map[int]bool{4: true, 5: true, 6: true, 7: true, 8: true, 9: true}
	lines := formatTable(headers, rows, rightAlign)
	lines = append(lines, "", "Success rate: "+Sparkline(MovingAverage(rates, window)), "")
	return writeLines(w, lines)
}

// RenderFailures prints the failed records of one run.
func RenderFailures(w io.Writer, runID string, outs []model.Outcome) error {
	if len(outs) == 0 {
		_, err := fmt.Fprintf(w, "No failed records in run %s.\n", runID)
		return err
	}
	if _, err := fmt.Fprintf(w, "Failed records in run %s\n", runID); err != nil {
		return err
	}
	headers := []string{"Record", "Session", "State", "Took", "Cause"}
	rows := make([][]string, 0, len(outs))
	for _, o := range outs {
		rows = append(rows, []string{
			o.RecordID,
			fmt.Sprintf("%d", o.Session),
			o.State,
			formatDuration(o.Duration),
			o.Cause,
		})
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 3: true})
	return writeLines(w, append(lines, ""))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
