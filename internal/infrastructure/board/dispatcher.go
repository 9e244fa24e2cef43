// Package board delivers note content to the visual board through a real
// browser session: the board has no public API, so notes are pasted into the
// page the same way a user would.
package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"NotesNexus/internal/config"
	"NotesNexus/internal/ports"
)

// Dispatcher pastes note content into board pages. One browser serves the
// whole dispatch pass; each note gets its own tab.
type Dispatcher struct {
	browser *rod.Browser
	cfg     config.BoardConfig
	logger  *slog.Logger
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// New connects to the configured browser, launching a local one when no
// DevTools URL is given. Close must be called when the pass is done.
func New(cfg config.BoardConfig, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	controlURL := cfg.BrowserURL
	if controlURL == "" {
		u, err := launcher.New().Headless(cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &Dispatcher{browser: browser, cfg: cfg, logger: logger}, nil
}

// Dispatch opens the destination in a new tab, inserts the content into the
// board body, and closes the tab. An empty destination is vacuous success.
func (d *Dispatcher) Dispatch(ctx context.Context, content, destination string) (bool, error) {
	if destination == "" {
		return true, nil
	}

	if d.cfg.NavTimeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.NavTimeout())
		defer cancel()
	}

	page, err := d.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return false, fmt.Errorf("open tab: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			d.logger.Warn("close board tab", "error", err)
		}
	}()
	page = page.Context(ctx)

	if err := page.Navigate(destination); err != nil {
		return false, fmt.Errorf("navigate %s: %w", destination, err)
	}
	if err := page.WaitLoad(); err != nil {
		return false, fmt.Errorf("wait load %s: %w", destination, err)
	}

	body, err := page.Element("body")
	if err != nil {
		return false, fmt.Errorf("find board body: %w", err)
	}
	if err := body.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("focus board: %w", err)
	}
	if err := page.InsertText(content); err != nil {
		return false, fmt.Errorf("insert note: %w", err)
	}
	// Escape commits the note as an unsorted card instead of leaving an
	// open editor behind.
	if err := page.Keyboard.Press(input.Escape); err != nil {
		return false, fmt.Errorf("commit note: %w", err)
	}

	return true, nil
}

// Close shuts the browser down.
func (d *Dispatcher) Close() error {
	return d.browser.Close()
}
