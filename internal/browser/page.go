// Package browser provides the interactive page capability used to fill the
// form, backed by go-rod or chromedp.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// pollInterval is how often a page is re-read while waiting for it to change.
const pollInterval = 100 * time.Millisecond

// Role is the ARIA role of a form control.
type Role string

// Control roles used by the form.
const (
	RoleRadio    Role = "radio"
	RoleCheckbox Role = "checkbox"
	RoleButton   Role = "button"
)

// Query selects controls of one role, optionally inside the question group
// whose text contains Scope (case-insensitive).
type Query struct {
	Role  Role
	Scope string
}

func (q Query) String() string {
	if q.Scope == "" {
		return string(q.Role)
	}
	return fmt.Sprintf("%s in %q", q.Role, q.Scope)
}

// Page is one browser tab.
type Page interface {
	// Navigate loads url.
	Navigate(ctx context.Context, url string) error
	// WaitIdle waits for the current page to finish loading.
	WaitIdle(ctx context.Context) error
	// Labels waits for at least one matching control and returns all labels.
	Labels(ctx context.Context, q Query) ([]string, error)
	// Exists reports whether a matching control is present right now.
	Exists(ctx context.Context, q Query) (bool, error)
	// Click clicks the matching control with the given label.
	Click(ctx context.Context, q Query, label string) error
	// Marker returns a fingerprint of the page on screen built from question
	// titles and control labels. It is empty while a document has no content.
	Marker(ctx context.Context) (string, error)
	// WaitChange waits up to the settle timeout for a non-empty marker other
	// than prev.
	WaitChange(ctx context.Context, prev string) error
	Close() error
}

// Context is an isolated browser context owning its pages.
type Context interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Driver owns the browser process.
type Driver interface {
	NewContext(ctx context.Context) (Context, error)
	Close() error
}

// Driver names.
const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
)

// Config holds browser configuration.
type Config struct {
	Driver         string
	DebuggerURL    string
	Bin            string
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	ElementTimeout time.Duration
	SettleTimeout  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverRod,
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 900,
		ElementTimeout: 10 * time.Second,
		SettleTimeout:  30 * time.Second,
	}
}

func (c Config) elementTimeout() time.Duration {
	if c.ElementTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ElementTimeout
}

func (c Config) settleTimeout() time.Duration {
	if c.SettleTimeout <= 0 {
		return 30 * time.Second
	}
	return c.SettleTimeout
}

// Open starts or connects to a browser with the configured driver.
func Open(ctx context.Context, cfg Config) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverRod:
		return openRod(ctx, cfg)
	case DriverChromedp:
		return openChromedp(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown browser driver %q (want %s or %s)", cfg.Driver, DriverRod, DriverChromedp)
	}
}

// waitChange polls read until it yields a non-empty marker other than prev.
// Read errors are normal while one document replaces another, so they only
// show up in the timeout error.
func waitChange(ctx context.Context, timeout time.Duration, prev string, read func(context.Context) (string, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		m, err := read(ctx)
		if err == nil && m != "" && m != prev {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("page did not change: %w (last read: %v)", ctx.Err(), lastErr)
			}
			return fmt.Errorf("page did not change: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
