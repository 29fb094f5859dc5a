// Package navigator drives one browser page through the play form for one
// record at a time.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/playlog/internal/browser"
	"github.com/verte-zerg/playlog/internal/model"
	"github.com/verte-zerg/playlog/internal/resolve"
)

var (
	// ErrNoMatch reports that no control matched the wanted label.
	ErrNoMatch = errors.New("no matching option")
	// ErrPageMismatch reports that the page on screen is not the expected one.
	ErrPageMismatch = errors.New("unexpected page")
)

// DefaultPresenceTimeout bounds the wait for optional questions and for the
// page that follows them.
const DefaultPresenceTimeout = 3 * time.Second

const presenceInterval = 100 * time.Millisecond

// Config holds what a Navigator needs besides its page.
type Config struct {
	FormURL string
	Profile Profile
	Tables  resolve.Tables
	// DryRun skips the final submit click.
	DryRun bool
	// PresenceTimeout defaults to DefaultPresenceTimeout.
	PresenceTimeout time.Duration
}

func (c Config) presenceTimeout() time.Duration {
	if c.PresenceTimeout <= 0 {
		return DefaultPresenceTimeout
	}
	return c.PresenceTimeout
}

// Navigator fills the form on a single page. It is not safe for concurrent use.
type Navigator struct {
	page browser.Page
	cfg  Config
	log  *zap.Logger
}

// New returns a Navigator bound to page.
func New(page browser.Page, cfg Config, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{page: page, cfg: cfg, log: log}
}

// traversal is the per-record state carried between pages.
type traversal struct {
	rec   model.Record
	state State
	// hero indexes the hero whose pages are on screen.
	hero int
}

func (t *traversal) currentHero() model.Hero {
	return t.rec.Heroes[t.hero]
}

// Process fills and submits the form for rec. Faults never escape: they are
// logged and returned as a failed Outcome.
func (n *Navigator) Process(ctx context.Context, rec model.Record) (out model.Outcome) {
	start := time.Now()
	t := &traversal{rec: rec, state: StateLoad}
	log := n.log.With(zap.String("record", rec.ID))
	out = model.Outcome{RecordID: rec.ID}

	defer func() {
		if r := recover(); r != nil {
			out.OK = false
			out.State = t.state.String()
			out.Cause = fmt.Sprintf("panic: %v", r)
			log.Error("record failed", zap.String("state", out.State), zap.String("cause", out.Cause))
		}
		out.Duration = time.Since(start)
	}()

	if len(rec.Heroes) == 0 {
		out.State = t.state.String()
		out.Cause = "record has no heroes"
		log.Error("record failed", zap.String("cause", out.Cause))
		return out
	}

	for t.state != StateDone {
		if err := ctx.Err(); err != nil {
			out.State = t.state.String()
			out.Cause = err.Error()
			return out
		}
		next, err := n.step(ctx, t, log)
		if err != nil {
			out.State = t.state.String()
			out.Cause = err.Error()
			log.Warn("record failed", zap.String("state", out.State), zap.Error(err))
			return out
		}
		log.Debug("page done", zap.Stringer("state", t.state), zap.Stringer("next", next))
		t.state = next
	}
	out.OK = true
	return out
}

func (n *Navigator) step(ctx context.Context, t *traversal, log *zap.Logger) (State, error) {
	switch t.state {
	case StateLoad:
		return n.load(ctx, log)
	case StateHero:
		return n.hero(ctx, t, log)
	case StateAspect:
		return n.aspect(ctx, t, log)
	case StateScenario:
		return n.scenario(ctx, t)
	case StateCampaign:
		return n.campaign(ctx)
	case StateModulars:
		return n.modulars(ctx, t, log)
	case StateOutcome:
		return n.outcome(ctx, t)
	case StateSubmit:
		return n.submit(ctx, log)
	default:
		return StateDone, fmt.Errorf("no transition from state %s", t.state)
	}
}

// load opens a fresh copy of the form, retrying once.
func (n *Navigator) load(ctx context.Context, log *zap.Logger) (State, error) {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		if err = n.page.Navigate(ctx, n.cfg.FormURL); err == nil {
			if err = n.page.WaitIdle(ctx); err == nil {
				return StateHero, nil
			}
		}
		log.Warn("form load failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	return StateLoad, fmt.Errorf("load form: %w", err)
}

func (n *Navigator) hero(ctx context.Context, t *traversal, log *zap.Logger) (State, error) {
	name := t.currentHero().Hero
	q := browser.Query{Role: browser.RoleRadio, Scope: n.cfg.Profile.HeroQuestion}
	err := n.choose(ctx, q, n.cfg.Tables.HeroLabel(name))
	if errors.Is(err, ErrNoMatch) {
		// The form rejects the page without a hero; that shows up on the next page.
		log.Warn("hero not found on form", zap.String("hero", name))
	} else if err != nil {
		return StateHero, fmt.Errorf("select hero %q: %w", name, err)
	}
	if err := n.advance(ctx); err != nil {
		return StateHero, err
	}
	return StateAspect, nil
}

func (n *Navigator) aspect(ctx context.Context, t *traversal, log *zap.Logger) (State, error) {
	h := t.currentHero()
	if err := n.selectAspect(ctx, t, h, log); err != nil {
		return StateAspect, err
	}

	more := t.hero+1 < len(t.rec.Heroes)
	if t.hero == 0 {
		more = more && !t.rec.Multiplayer
	}
	if err := n.answerAnotherHero(ctx, t.hero, more); err != nil {
		return StateAspect, err
	}
	if err := n.advance(ctx); err != nil {
		return StateAspect, err
	}
	if more {
		t.hero++
		return StateHero, nil
	}
	return StateScenario, nil
}

func (n *Navigator) selectAspect(ctx context.Context, t *traversal, h model.Hero, log *zap.Logger) error {
	q := browser.Query{Role: browser.RoleRadio, Scope: n.cfg.Profile.AspectQuestion}
	label := h.Aspect
	// Only the first hero gets the no-aspect and dual-aspect handling.
	if t.hero == 0 {
		switch {
		case n.cfg.Tables.SkipsAspect(h.Hero):
			return nil
		case n.cfg.Tables.DualAspect(h.Hero):
			dual, ok := resolve.DualAspect(h.Aspect)
			if !ok {
				log.Warn("unmapped dual aspect, submitting as written",
					zap.String("hero", h.Hero), zap.String("aspect", h.Aspect))
			}
			label = dual
		}
	}
	if err := n.choose(ctx, q, label); err != nil {
		return fmt.Errorf("select aspect %q: %w", label, err)
	}
	return nil
}

// answerAnotherHero answers the "another hero?" question asked after the
// hero at index entered. A missing question is fine when there is nothing
// more to add after a later hero.
func (n *Navigator) answerAnotherHero(ctx context.Context, entered int, more bool) error {
	questions := n.cfg.Profile.AnotherHeroQuestions
	if entered >= len(questions) {
		if more {
			return fmt.Errorf("no question for hero %d", entered+2)
		}
		return nil
	}
	q := browser.Query{Role: browser.RoleRadio, Scope: questions[entered]}
	if entered > 0 && !more {
		present, err := n.page.Exists(ctx, q)
		if err != nil {
			return err
		}
		if !present {
			return nil
		}
	}
	answer := n.cfg.Profile.No
	if more {
		answer = n.cfg.Profile.Yes
	}
	if err := n.choose(ctx, q, answer); err != nil {
		return fmt.Errorf("answer %q: %w", questions[entered], err)
	}
	return nil
}

func (n *Navigator) scenario(ctx context.Context, t *traversal) (State, error) {
	label := n.cfg.Tables.ScenarioLabel(t.rec.Scenario)
	q := browser.Query{Role: browser.RoleRadio, Scope: n.cfg.Profile.ScenarioQuestion}
	if err := n.choose(ctx, q, label); err != nil {
		return StateScenario, fmt.Errorf("select scenario %q: %w", label, err)
	}
	if err := n.advance(ctx); err != nil {
		return StateScenario, err
	}
	return StateCampaign, nil
}

// campaign answers "no" to the campaign question when the form shows it.
// The page after the scenario is either the campaign question, the modular
// sets or the outcome; whichever shows up first decides.
func (n *Navigator) campaign(ctx context.Context) (State, error) {
	p := n.cfg.Profile
	q := browser.Query{Role: browser.RoleRadio, Scope: p.CampaignQuestion}
	found, err := n.await(ctx, q,
		browser.Query{Role: browser.RoleCheckbox},
		browser.Query{Role: browser.RoleRadio, Scope: p.OutcomeQuestion},
	)
	if err != nil {
		return StateCampaign, err
	}
	if found != 0 {
		return StateModulars, nil
	}
	if err := n.choose(ctx, q, n.cfg.Profile.No); err != nil {
		return StateCampaign, fmt.Errorf("answer campaign question: %w", err)
	}
	if err := n.advance(ctx); err != nil {
		return StateCampaign, err
	}
	return StateModulars, nil
}

func (n *Navigator) modulars(ctx context.Context, t *traversal, log *zap.Logger) (State, error) {
	if n.cfg.Tables.SkipsModulars(t.rec.Scenario) {
		return StateOutcome, nil
	}
	found, err := n.await(ctx, browser.Query{Role: browser.RoleCheckbox})
	if err != nil {
		return StateModulars, err
	}
	if found < 0 {
		return StateModulars, fmt.Errorf("%w: expected modular checkboxes", ErrPageMismatch)
	}

	q := browser.Query{Role: browser.RoleCheckbox, Scope: n.cfg.Profile.ModularQuestion}
	labels, err := n.page.Labels(ctx, q)
	if err != nil {
		return StateModulars, err
	}
	for _, m := range t.rec.Modulars {
		want := n.cfg.Tables.ModularLabel(m)
		label, ok := resolve.Match(labels, want)
		if !ok {
			log.Warn("modular not found on form", zap.String("modular", m))
			continue
		}
		if err := n.page.Click(ctx, q, label); err != nil {
			return StateModulars, fmt.Errorf("select modular %q: %w", label, err)
		}
	}
	if err := n.advance(ctx); err != nil {
		return StateModulars, err
	}
	return StateOutcome, nil
}

func (n *Navigator) outcome(ctx context.Context, t *traversal) (State, error) {
	p := n.cfg.Profile
	result := p.Loss
	if t.rec.Heroes[0].Won() {
		result = p.Win
	}
	if err := n.choose(ctx, browser.Query{Role: browser.RoleRadio, Scope: p.OutcomeQuestion}, result); err != nil {
		return StateOutcome, fmt.Errorf("select result %q: %w", result, err)
	}

	code := t.rec.Difficulty
	d := resolve.DecodeDifficulty(code)
	if n.cfg.Tables.AltDifficulty(t.rec.Scenario) {
		tier := resolve.CoarseTier(code)
		if err := n.choose(ctx, browser.Query{Role: browser.RoleRadio, Scope: p.AltDifficultyQuestion}, tier); err != nil {
			return StateOutcome, fmt.Errorf("select difficulty %q: %w", tier, err)
		}
	} else {
		if d.Standard != "" {
			if err := n.choose(ctx, browser.Query{Role: browser.RoleRadio, Scope: p.StandardQuestion}, d.Standard); err != nil {
				return StateOutcome, fmt.Errorf("select standard set %q: %w", d.Standard, err)
			}
		}
		if d.Expert != "" {
			if err := n.choose(ctx, browser.Query{Role: browser.RoleRadio, Scope: p.ExpertQuestion}, d.Expert); err != nil {
				return StateOutcome, fmt.Errorf("select expert set %q: %w", d.Expert, err)
			}
		}
	}
	if d.Heroic != "" {
		// Scoped: another question on this page also offers "1" to "4".
		q := browser.Query{Role: browser.RoleRadio, Scope: p.HeroicQuestion}
		if err := n.choose(ctx, q, d.Heroic); err != nil {
			return StateOutcome, fmt.Errorf("select heroic level %q: %w", d.Heroic, err)
		}
	}
	return StateSubmit, nil
}

func (n *Navigator) submit(ctx context.Context, log *zap.Logger) (State, error) {
	if n.cfg.DryRun {
		log.Info("submitted (dry run)")
		return StateDone, nil
	}
	q := browser.Query{Role: browser.RoleButton}
	if err := n.page.Click(ctx, q, n.cfg.Profile.Submit); err != nil {
		return StateSubmit, fmt.Errorf("click submit: %w", err)
	}
	if err := n.page.WaitIdle(ctx); err != nil {
		return StateSubmit, err
	}
	log.Info("submitted")
	return StateDone, nil
}

// choose clicks the option matching want, exact label first.
func (n *Navigator) choose(ctx context.Context, q browser.Query, want string) error {
	labels, err := n.page.Labels(ctx, q)
	if err != nil {
		return err
	}
	label, ok := resolve.Match(labels, want)
	if !ok {
		return fmt.Errorf("%w: %q among %d options", ErrNoMatch, want, len(labels))
	}
	return n.page.Click(ctx, q, label)
}

// advance clicks Next and waits until a different page is on screen and
// has settled.
func (n *Navigator) advance(ctx context.Context) error {
	prev, err := n.page.Marker(ctx)
	if err != nil {
		return err
	}
	q := browser.Query{Role: browser.RoleButton}
	if err := n.page.Click(ctx, q, n.cfg.Profile.Next); err != nil {
		return fmt.Errorf("click next: %w", err)
	}
	if err := n.page.WaitChange(ctx, prev); err != nil {
		return fmt.Errorf("wait for next page: %w", err)
	}
	return n.page.WaitIdle(ctx)
}

// await polls until one of qs is present and returns its index, or -1 once
// the presence timeout passes.
func (n *Navigator) await(ctx context.Context, qs ...browser.Query) (int, error) {
	deadline := time.Now().Add(n.cfg.presenceTimeout())
	for {
		for i, q := range qs {
			present, err := n.page.Exists(ctx, q)
			if err != nil {
				return -1, err
			}
			if present {
				return i, nil
			}
		}
		if !time.Now().Before(deadline) {
			return -1, nil
		}
		timer := time.NewTimer(presenceInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return -1, ctx.Err()
		case <-timer.C:
		}
	}
}
