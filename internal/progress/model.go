// Package progress provides the Bubble Tea view of a running batch.
package progress

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/playlog/internal/model"
)

// Messages fed to the model by the Observer.
type (
	SessionStartedMsg struct {
		Session int
		Records int
	}
	RecordDoneMsg struct {
		Session int
		Outcome model.Outcome
	}
	RecoveredMsg struct {
		Session int
	}
	SessionDoneMsg struct {
		Session int
		Tally   model.Tally
	}
	// DoneMsg ends the program once the run is over.
	DoneMsg struct {
		Summary model.Summary
	}
)

type sessionRow struct {
	records    int
	ok         int
	failed     int
	abandoned  int
	recoveries int
	finished   bool
	lastFailed string
}

func (r *sessionRow) done() int {
	return r.ok + r.failed + r.abandoned
}

// Model implements the Bubble Tea progress view.
type Model struct {
	rows      map[int]*sessionRow
	bar       progress.Model
	width     int
	startedAt time.Time
	now       func() time.Time
	summary   *model.Summary
	// onInterrupt runs when the user presses ctrl+c.
	onInterrupt func()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const defaultBarWidth = 30

// NewModel constructs a progress model. onInterrupt may be nil.
func NewModel(onInterrupt func()) *Model {
	return &Model{
		rows:        map[int]*sessionRow{},
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth), progress.WithoutPercentage()),
		startedAt:   time.Now(),
		now:         time.Now,
		onInterrupt: onInterrupt,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width/3, 10), 60)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && m.onInterrupt != nil {
			m.onInterrupt()
		}
	case SessionStartedMsg:
		m.row(msg.Session).records = msg.Records
	case RecordDoneMsg:
		r := m.row(msg.Session)
		if msg.Outcome.OK {
			r.ok++
		} else {
			r.failed++
			r.lastFailed = msg.Outcome.RecordID
		}
	case RecoveredMsg:
		m.row(msg.Session).recoveries++
	case SessionDoneMsg:
		r := m.row(msg.Session)
		r.abandoned = msg.Tally.Abandoned
		r.finished = true
	case DoneMsg:
		s := msg.Summary
		m.summary = &s
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) row(session int) *sessionRow {
	r, ok := m.rows[session]
	if !ok {
		r = &sessionRow{}
		m.rows[session] = r
	}
	return r
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Submitting plays"))
	b.WriteString("\n\n")

	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var total, done int
	for _, id := range ids {
		r := m.rows[id]
		total += r.records
		done += r.done()
		b.WriteString(m.renderRow(id, r))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.renderFooter(done, total))
	b.WriteByte('\n')
	return b.String()
}

func (m *Model) renderRow(id int, r *sessionRow) string {
	pct := 0.0
	if r.records > 0 {
		pct = float64(r.done()) / float64(r.records)
	}
	segments := []string{
		fmt.Sprintf("S%02d", id),
		m.bar.ViewAs(pct),
		fmt.Sprintf("%d/%d", r.done(), r.records),
		okStyle.Render(fmt.Sprintf("ok %d", r.ok)),
	}
	if r.failed > 0 {
		segments = append(segments, failStyle.Render(fmt.Sprintf("failed %d (last %s)", r.failed, r.lastFailed)))
	}
	if r.abandoned > 0 {
		segments = append(segments, failStyle.Render(fmt.Sprintf("abandoned %d", r.abandoned)))
	}
	if r.recoveries > 0 {
		segments = append(segments, mutedStyle.Render(fmt.Sprintf("new page ×%d", r.recoveries)))
	}
	if r.finished {
		segments = append(segments, mutedStyle.Render("done"))
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderFooter(done, total int) string {
	elapsed := m.now().Sub(m.startedAt).Round(time.Second)
	if m.summary != nil {
		elapsed = m.summary.Elapsed.Round(time.Second)
	}
	return footerStyle.Render(fmt.Sprintf("%d/%d records · elapsed %s", done, total, elapsed))
}
