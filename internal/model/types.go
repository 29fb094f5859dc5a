// Package model defines shared data structures.
package model

import "time"

// NoAspect is the aspect value recorded when no aspect was chosen.
const NoAspect = "None"

// Hero is one hero played in a record.
type Hero struct {
	Hero   string `json:"hero" yaml:"hero"`
	Aspect string `json:"aspect" yaml:"aspect"`
	Win    int    `json:"win" yaml:"win"`
}

// Won reports whether the play was a win for this hero.
func (h Hero) Won() bool {
	return h.Win == 1
}

// Record is one completed play to be submitted.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	Date        time.Time `json:"-" yaml:"-"`
	Scenario    string    `json:"scenario" yaml:"scenario"`
	Difficulty  string    `json:"difficulty" yaml:"difficulty"`
	Multiplayer bool      `json:"multiplayer" yaml:"multiplayer"`
	Solo        bool      `json:"solo" yaml:"solo"`
	Heroes      []Hero    `json:"heroes" yaml:"heroes"`
	Modulars    []string  `json:"modulars" yaml:"modulars"`
}

// FilterReport counts the records dropped before a run.
type FilterReport struct {
	Total            int
	RejectedAspect   int
	RejectedModulars int
	RejectedDate     int
}

// Kept returns the number of records that survived filtering.
func (r FilterReport) Kept() int {
	return r.Total - r.RejectedAspect - r.RejectedModulars - r.RejectedDate
}

// Outcome is the result of pushing one record through the form.
type Outcome struct {
	RecordID string
	Session  int
	OK       bool
	// State names the form step that failed; empty on success.
	State    string
	Cause    string
	Duration time.Duration
}

// Tally counts outcomes for one session.
type Tally struct {
	Succeeded int
	Failed    int
	Abandoned int
}

// Add folds another tally into t.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		Succeeded: t.Succeeded + o.Succeeded,
		Failed:    t.Failed + o.Failed,
		Abandoned: t.Abandoned + o.Abandoned,
	}
}

// Processed returns the number of records that reached the form.
func (t Tally) Processed() int {
	return t.Succeeded + t.Failed
}

// Summary is the batch-level result of a run.
type Summary struct {
	Tally
	Sessions int
	Elapsed  time.Duration
}

// AvgPerRecord returns the mean wall time per processed record.
func (s Summary) AvgPerRecord() time.Duration {
	n := s.Processed()
	if n == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(n)
}

// RunMeta describes a run when it is first recorded.
type RunMeta struct {
	StartedAt time.Time
	InputPath string
	Since     *time.Time
	DryRun    bool
	Workers   int
	Filter    FilterReport
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	RunID      string
	StartedAt  time.Time
	InputPath  string
	DryRun     bool
	Workers    int
	Succeeded  int
	Failed     int
	Abandoned  int
	DurationMs int64
}

// HistoryConfig defines filters for the history listing.
type HistoryConfig struct {
	Since *time.Time
	Last  int
	RunID string
}
