package progress

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/playlog/internal/model"
)

// Observer forwards session events to a running program.
type Observer struct {
	send func(tea.Msg)
}

// NewObserver returns an Observer feeding p. tea.Program.Send is safe for
// concurrent use.
func NewObserver(p *tea.Program) *Observer {
	return &Observer{send: p.Send}
}

func (o *Observer) SessionStarted(session, records int) {
	o.send(SessionStartedMsg{Session: session, Records: records})
}

func (o *Observer) RecordFinished(session int, out model.Outcome) {
	o.send(RecordDoneMsg{Session: session, Outcome: out})
}

func (o *Observer) SessionRecovered(session int) {
	o.send(RecoveredMsg{Session: session})
}

func (o *Observer) SessionFinished(session int, tally model.Tally) {
	o.send(SessionDoneMsg{Session: session, Tally: tally})
}
