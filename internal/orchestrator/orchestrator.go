// Package orchestrator runs record chunks through concurrent browser sessions.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/playlog/internal/browser"
	"github.com/verte-zerg/playlog/internal/model"
	"github.com/verte-zerg/playlog/internal/records"
)

// Defaults for Options.
const (
	DefaultWorkers          = 8
	MaxWorkers              = 32
	DefaultSuccessDelay     = time.Second
	DefaultFailureDelay     = 3 * time.Second
	DefaultFailureThreshold = 3
)

// Processor pushes one record through the form.
type Processor interface {
	Process(ctx context.Context, rec model.Record) model.Outcome
}

// ProcessorFactory builds the processor for a session's current page. It is
// called again whenever the session replaces its page.
type ProcessorFactory func(session int, page browser.Page) Processor

// Options controls a run.
type Options struct {
	Workers    int
	Sequential bool
	// SuccessDelay and FailureDelay are the pauses after a record.
	SuccessDelay time.Duration
	FailureDelay time.Duration
	// FailureThreshold consecutive failures make a session replace its page.
	FailureThreshold int
}

// DefaultOptions returns the stock run options.
func DefaultOptions() Options {
	return Options{
		Workers:          DefaultWorkers,
		SuccessDelay:     DefaultSuccessDelay,
		FailureDelay:     DefaultFailureDelay,
		FailureThreshold: DefaultFailureThreshold,
	}
}

// Orchestrator fans chunks of records out to browser sessions.
type Orchestrator struct {
	driver   browser.Driver
	factory  ProcessorFactory
	opts     Options
	log      *zap.Logger
	observer Observer
	sleep    func(ctx context.Context, d time.Duration) error
}

// New returns an Orchestrator. Observers must be safe for concurrent use.
func New(driver browser.Driver, factory ProcessorFactory, opts Options, log *zap.Logger, observers ...Observer) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	return &Orchestrator{
		driver:   driver,
		factory:  factory,
		opts:     opts,
		log:      log,
		observer: Observers(observers),
		sleep:    sleepCtx,
	}
}

// Run processes recs and returns the batch summary. Record failures never
// turn into an error; the error is the context's when the run was cut short.
func (o *Orchestrator) Run(ctx context.Context, recs []model.Record) (model.Summary, error) {
	start := time.Now()
	workers := o.opts.Workers
	if o.opts.Sequential {
		workers = 1
	}
	chunks := records.Partition(recs, workers)
	tallies := make([]model.Tally, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			tallies[i] = o.runSession(gctx, i+1, chunk)
			return nil
		})
	}
	_ = g.Wait()

	summary := model.Summary{Sessions: len(chunks), Elapsed: time.Since(start)}
	for _, t := range tallies {
		summary.Tally = summary.Tally.Add(t)
	}
	return summary, ctx.Err()
}

type session struct {
	id    int
	o     *Orchestrator
	bctx  browser.Context
	page  browser.Page
	proc  Processor
	log   *zap.Logger
	tally model.Tally
}

func (o *Orchestrator) runSession(ctx context.Context, id int, chunk []model.Record) model.Tally {
	s := &session{id: id, o: o, log: o.log.With(zap.Int("session", id))}
	o.observer.SessionStarted(id, len(chunk))
	defer func() { o.observer.SessionFinished(id, s.tally) }()

	bctx, err := o.driver.NewContext(ctx)
	if err != nil {
		s.log.Error("browser context failed, abandoning chunk", zap.Int("records", len(chunk)), zap.Error(err))
		s.tally.Abandoned = len(chunk)
		return s.tally
	}
	s.bctx = bctx
	defer func() {
		if err := bctx.Close(); err != nil {
			s.log.Debug("close browser context", zap.Error(err))
		}
	}()

	if err := s.acquire(ctx); err != nil {
		s.log.Error("page acquisition failed, abandoning chunk", zap.Int("records", len(chunk)), zap.Error(err))
		s.tally.Abandoned = len(chunk)
		return s.tally
	}
	defer s.release()
	s.log.Info("session initialized", zap.Int("records", len(chunk)))

	streak := 0
	for i, rec := range chunk {
		if ctx.Err() != nil {
			s.abandon(len(chunk)-i, ctx.Err())
			break
		}
		if streak >= o.opts.FailureThreshold {
			s.log.Warn("consecutive failures, replacing page", zap.Int("failures", streak))
			s.release()
			if err := s.acquire(ctx); err != nil {
				s.abandon(len(chunk)-i, err)
				break
			}
			streak = 0
			o.observer.SessionRecovered(id)
		}

		out := s.proc.Process(ctx, rec)
		out.Session = id
		delay := o.opts.SuccessDelay
		if out.OK {
			s.tally.Succeeded++
			streak = 0
		} else {
			s.tally.Failed++
			streak++
			delay = o.opts.FailureDelay
		}
		o.observer.RecordFinished(id, out)

		if i == len(chunk)-1 {
			break
		}
		if err := o.sleep(ctx, delay); err != nil {
			s.abandon(len(chunk)-i-1, err)
			break
		}
	}
	s.log.Info("session finished",
		zap.Int("succeeded", s.tally.Succeeded),
		zap.Int("failed", s.tally.Failed),
		zap.Int("abandoned", s.tally.Abandoned))
	return s.tally
}

func (s *session) acquire(ctx context.Context) error {
	page, err := s.bctx.NewPage(ctx)
	if err != nil {
		return err
	}
	s.page = page
	s.proc = s.o.factory(s.id, page)
	return nil
}

func (s *session) release() {
	if s.page == nil {
		return
	}
	if err := s.page.Close(); err != nil {
		s.log.Debug("close page", zap.Error(err))
	}
	s.page = nil
	s.proc = nil
}

func (s *session) abandon(n int, cause error) {
	s.tally.Abandoned += n
	s.log.Warn("abandoning remaining records", zap.Int("records", n), zap.Error(cause))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
