// Package roddriver drives Chromium over the DevTools protocol with go-rod.
// It implements the same capability set as pwdriver and needs no separate
// driver install, only a Chromium binary (downloaded on first use).
package roddriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/harness"
	"github.com/kuitang/storefront-e2e/internal/obs"
)

// Launcher starts one Chromium process per session.
type Launcher struct {
	// ActionTimeout bounds a single DevTools call (click, input, read).
	ActionTimeout time.Duration
}

// New returns a launcher.
func New(actionTimeout time.Duration) *Launcher {
	return &Launcher{ActionTimeout: actionTimeout}
}

// Launch starts Chromium, connects to it and opens a blank page.
func (l *Launcher) Launch(ctx context.Context, opts harness.BrowserOptions) (harness.Driver, error) {
	ln := launcher.New().
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-gpu")
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		ln = ln.Set("window-size", fmt.Sprintf("%d,%d", opts.ViewportWidth, opts.ViewportHeight))
	}

	u, err := ln.Launch()
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "chromium not available", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		ln.Cleanup()
		return nil, fmt.Errorf("open page: %w", err)
	}

	obs.From(ctx).Debug("rod_browser_launched", "pkg", "roddriver", "headless", opts.Headless)
	return &driver{launcher: ln, browser: browser, page: page, timeout: l.ActionTimeout}, nil
}

type driver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

func (d *driver) bounded(ctx context.Context) *rod.Page {
	p := d.page.Context(ctx)
	if d.timeout > 0 {
		p = p.Timeout(d.timeout)
	}
	return p
}

func (d *driver) Navigate(ctx context.Context, url string) error {
	p := d.bounded(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (d *driver) Query(ctx context.Context, sel harness.Selector) ([]harness.Element, error) {
	p := d.page.Context(ctx)
	var (
		found rod.Elements
		err   error
	)
	if q, xpath := queryFor(sel); xpath {
		found, err = p.ElementsX(q)
	} else {
		found, err = p.Elements(q)
	}
	if err != nil {
		return nil, err
	}
	out := make([]harness.Element, 0, len(found))
	for _, el := range found {
		out = append(out, &element{el: el, timeout: d.timeout})
	}
	return out, nil
}

// queryFor returns the CSS query for sel, or its XPath when sel has no CSS
// form.
func queryFor(sel harness.Selector) (query string, xpath bool) {
	if css, ok := sel.CSS(); ok {
		return css, false
	}
	return sel.Value, true
}

func (d *driver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *driver) Maximize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	return d.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (d *driver) Quit() error {
	err := d.browser.Close()
	d.launcher.Cleanup()
	return err
}

type element struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *element) bounded() *rod.Element {
	if e.timeout > 0 {
		return e.el.Timeout(e.timeout)
	}
	return e.el
}

func (e *element) Text() (string, error) {
	return e.bounded().Text()
}

func (e *element) Attribute(name string) (string, bool, error) {
	v, err := e.bounded().Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *element) Visible() (bool, error) {
	return e.bounded().Visible()
}

func (e *element) Enabled() (bool, error) {
	disabled, err := e.bounded().Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (e *element) Click() error {
	return e.bounded().Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) SendKeys(text string) error {
	el := e.bounded()
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}

func (e *element) SelectOption(value string) error {
	return e.bounded().Select([]string{optionSelector(value)}, true, rod.SelectorTypeCSSSector)
}

var cssString = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// optionSelector matches the <option> whose value attribute is value.
func optionSelector(value string) string {
	return `[value="` + cssString.Replace(value) + `"]`
}
