package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

type chromedpDriver struct {
	cfg         Config
	root        context.Context
	cancelAlloc context.CancelFunc
	cancelRoot  context.CancelFunc
}

func openChromedp(ctx context.Context, cfg Config) (*chromedpDriver, error) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if cfg.DebuggerURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.DebuggerURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", cfg.Headless))
		if cfg.Bin != "" {
			opts = append(opts, chromedp.ExecPath(cfg.Bin))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	}

	root, cancelRoot := chromedp.NewContext(allocCtx)
	// The first Run starts the browser.
	if err := chromedp.Run(root); err != nil {
		cancelRoot()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &chromedpDriver{
		cfg:         cfg,
		root:        root,
		cancelAlloc: cancelAlloc,
		cancelRoot:  cancelRoot,
	}, nil
}

// NewContext opens a new browser context. Tabs created from it share its
// cookies and storage and nothing else.
func (d *chromedpDriver) NewContext(ctx context.Context) (Context, error) {
	bctx, cancel := chromedp.NewContext(d.root, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	return &chromedpContext{cfg: d.cfg, ctx: bctx, cancel: cancel}, nil
}

func (d *chromedpDriver) Close() error {
	d.cancelRoot()
	d.cancelAlloc()
	return nil
}

type chromedpContext struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *chromedpContext) NewPage(ctx context.Context) (Page, error) {
	tab, cancel := chromedp.NewContext(c.ctx)
	p := &chromedpPage{cfg: c.cfg, ctx: tab, cancel: cancel}
	err := p.run(ctx, c.cfg.settleTimeout(),
		emulation.SetDeviceMetricsOverride(int64(c.cfg.ViewportWidth), int64(c.cfg.ViewportHeight), 1.0, false),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create page: %w", err)
	}
	return p, nil
}

func (c *chromedpContext) Close() error {
	c.cancel()
	return nil
}

type chromedpPage struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (p *chromedpPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tctx, actions...)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, p.cfg.settleTimeout(), chromedp.Navigate(url))
}

func (p *chromedpPage) WaitIdle(ctx context.Context) error {
	var ready bool
	err := p.run(ctx, p.cfg.settleTimeout(),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(readyJS, &ready, chromedp.WithPollingInterval(100*time.Millisecond)),
	)
	if err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

func (p *chromedpPage) Labels(ctx context.Context, q Query) ([]string, error) {
	var present bool
	if err := p.run(ctx, p.cfg.elementTimeout(),
		chromedp.Poll(countJS(q)+" > 0", &present, chromedp.WithPollingInterval(100*time.Millisecond)),
	); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", q, err)
	}
	var labels []string
	if err := p.run(ctx, p.cfg.elementTimeout(), chromedp.Evaluate(labelsJS(q), &labels)); err != nil {
		return nil, fmt.Errorf("read labels for %s: %w", q, err)
	}
	return labels, nil
}

func (p *chromedpPage) Exists(ctx context.Context, q Query) (bool, error) {
	var n int
	if err := p.run(ctx, p.cfg.elementTimeout(), chromedp.Evaluate(countJS(q), &n)); err != nil {
		return false, fmt.Errorf("check %s: %w", q, err)
	}
	return n > 0, nil
}

func (p *chromedpPage) Click(ctx context.Context, q Query, label string) error {
	if err := p.run(ctx, p.cfg.elementTimeout(), chromedp.Click(controlJS(q, label), chromedp.ByJSPath)); err != nil {
		return fmt.Errorf("click %s %q: %w", q, label, err)
	}
	return nil
}

func (p *chromedpPage) Marker(ctx context.Context) (string, error) {
	var m string
	if err := p.run(ctx, p.cfg.elementTimeout(), chromedp.Evaluate(markerJS, &m)); err != nil {
		return "", fmt.Errorf("read page marker: %w", err)
	}
	return m, nil
}

func (p *chromedpPage) WaitChange(ctx context.Context, prev string) error {
	return waitChange(ctx, p.cfg.settleTimeout(), prev, p.Marker)
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}
