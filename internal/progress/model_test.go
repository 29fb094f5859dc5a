package progress

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/playlog/internal/model"
)

func TestModelTracksSessions(t *testing.T) {
	m := NewModel(nil)
	var msgs []tea.Msg
	obs := &Observer{send: func(msg tea.Msg) { msgs = append(msgs, msg) }}

	obs.SessionStarted(1, 3)
	obs.SessionStarted(2, 2)
	obs.RecordFinished(1, model.Outcome{RecordID: "r1", OK: true})
	obs.RecordFinished(1, model.Outcome{RecordID: "r2"})
	obs.SessionRecovered(1)
	obs.SessionFinished(2, model.Tally{Abandoned: 2})
	for _, msg := range msgs {
		m.Update(msg)
	}

	view := m.View()
	if !containsAll(view, []string{"S01", "2/3", "ok 1", "failed 1 (last r2)", "new page ×1", "S02", "abandoned 2", "done", "4/5 records"}) {
		t.Fatalf("view missing expected segments:\n%s", view)
	}
	if strings.Index(view, "S01") > strings.Index(view, "S02") {
		t.Fatalf("sessions out of order:\n%s", view)
	}
}

func TestModelQuitsOnDone(t *testing.T) {
	m := NewModel(nil)
	_, cmd := m.Update(DoneMsg{Summary: model.Summary{Elapsed: 42 * time.Second}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if !strings.Contains(m.View(), "elapsed 42s") {
		t.Fatalf("footer should show the final elapsed time:\n%s", m.View())
	}
}

func TestModelInterrupt(t *testing.T) {
	called := false
	m := NewModel(func() { called = true })
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !called {
		t.Fatalf("expected interrupt callback")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
