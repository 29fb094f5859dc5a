package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type rodDriver struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func openRod(ctx context.Context, cfg Config) (*rodDriver, error) {
	d := &rodDriver{cfg: cfg}
	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		d.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if d.launcher != nil {
			d.launcher.Kill()
		}
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	d.browser = b
	return d, nil
}

// NewContext opens an incognito browser context.
func (d *rodDriver) NewContext(ctx context.Context) (Context, error) {
	if d.browser == nil {
		return nil, errors.New("browser not connected")
	}
	incognito, err := d.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	return &rodContext{cfg: d.cfg, browser: incognito}, nil
}

func (d *rodDriver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
		d.browser = nil
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher = nil
	}
	return err
}

type rodContext struct {
	cfg     Config
	browser *rod.Browser
}

func (c *rodContext) NewPage(ctx context.Context) (Page, error) {
	page, err := c.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.cfg.ViewportWidth,
		Height:            c.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	return &rodPage{cfg: c.cfg, page: page}, nil
}

// Close disposes the incognito context and its pages.
func (c *rodContext) Close() error {
	return c.browser.Close()
}

type rodPage struct {
	cfg  Config
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	return p.page.Context(ctx).Timeout(p.cfg.settleTimeout()).Navigate(url)
}

func (p *rodPage) WaitIdle(ctx context.Context) error {
	page := p.page.Context(ctx).Timeout(p.cfg.settleTimeout())
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if err := page.WaitIdle(p.cfg.settleTimeout()); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

func (p *rodPage) Labels(ctx context.Context, q Query) ([]string, error) {
	page := p.page.Context(ctx).Timeout(p.cfg.elementTimeout())
	if _, err := page.ElementByJS(rod.Eval(arrow(firstJS(q)))); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", q, err)
	}
	res, err := p.page.Context(ctx).Eval(arrow(labelsJS(q)))
	if err != nil {
		return nil, fmt.Errorf("read labels for %s: %w", q, err)
	}
	items := res.Value.Arr()
	labels := make([]string, 0, len(items))
	for _, v := range items {
		labels = append(labels, v.Str())
	}
	return labels, nil
}

func (p *rodPage) Exists(ctx context.Context, q Query) (bool, error) {
	res, err := p.page.Context(ctx).Eval(arrow(countJS(q)))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", q, err)
	}
	return res.Value.Int() > 0, nil
}

func (p *rodPage) Click(ctx context.Context, q Query, label string) error {
	page := p.page.Context(ctx).Timeout(p.cfg.elementTimeout())
	el, err := page.ElementByJS(rod.Eval(arrow(controlJS(q, label))))
	if err != nil {
		return fmt.Errorf("find %s %q: %w", q, label, err)
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll to %q: %w", label, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) Marker(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(arrow(markerJS))
	if err != nil {
		return "", fmt.Errorf("read page marker: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *rodPage) WaitChange(ctx context.Context, prev string) error {
	return waitChange(ctx, p.cfg.settleTimeout(), prev, p.Marker)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func arrow(expr string) string {
	return "() => " + expr
}
