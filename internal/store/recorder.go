package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/verte-zerg/playlog/internal/model"
)

// Recorder writes record outcomes of one run as sessions report them.
// Storage errors are logged, never passed back to the sessions.
type Recorder struct {
	store *Store
	runID string
	log   *zap.Logger
}

// NewRecorder returns a Recorder for the run with the given id.
func NewRecorder(store *Store, runID string, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: store, runID: runID, log: log}
}

func (r *Recorder) SessionStarted(session, records int) {}

func (r *Recorder) RecordFinished(session int, out model.Outcome) {
	// Outcomes are stored even when the run is being canceled.
	if err := r.store.RecordOutcome(context.Background(), r.runID, out); err != nil {
		r.log.Warn("failed to store outcome", zap.String("record", out.RecordID), zap.Error(err))
	}
}

func (r *Recorder) SessionRecovered(session int) {}

func (r *Recorder) SessionFinished(session int, tally model.Tally) {}
