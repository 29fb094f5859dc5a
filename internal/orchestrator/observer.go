package orchestrator

import "github.com/verte-zerg/playlog/internal/model"

// Observer receives session events. Implementations must be safe for
// concurrent use; every session calls them from its own goroutine.
type Observer interface {
	SessionStarted(session, records int)
	RecordFinished(session int, out model.Outcome)
	SessionRecovered(session int)
	SessionFinished(session int, tally model.Tally)
}

// Observers fans events out to each observer in order.
type Observers []Observer

func (obs Observers) SessionStarted(session, records int) {
	for _, o := range obs {
		o.SessionStarted(session, records)
	}
}

func (obs Observers) RecordFinished(session int, out model.Outcome) {
	for _, o := range obs {
		o.RecordFinished(session, out)
	}
}

func (obs Observers) SessionRecovered(session int) {
	for _, o := range obs {
		o.SessionRecovered(session)
	}
}

func (obs Observers) SessionFinished(session int, tally model.Tally) {
	for _, o := range obs {
		o.SessionFinished(session, tally)
	}
}
