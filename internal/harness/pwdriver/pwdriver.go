// Package pwdriver drives Chromium through playwright-go.
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/harness"
	"github.com/kuitang/storefront-e2e/internal/obs"
	"github.com/kuitang/storefront-e2e/internal/wait"
)

// Launcher owns the playwright driver process. Each Launch starts a fresh
// Chromium so sessions never share cookies or carts.
type Launcher struct {
	// ActionTimeout bounds a single playwright call (click, fill, read).
	ActionTimeout time.Duration

	mu sync.Mutex
	pw *playwright.Playwright
}

// New returns a launcher. The playwright driver starts lazily on the first
// Launch.
func New(actionTimeout time.Duration) *Launcher {
	return &Launcher{ActionTimeout: actionTimeout}
}

func (l *Launcher) start() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw != nil {
		return l.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "playwright driver not available", err)
	}
	l.pw = pw
	return pw, nil
}

// Available starts the playwright driver and reports whether it runs.
func (l *Launcher) Available() error {
	_, err := l.start()
	return err
}

// Launch starts a browser with one context and one page.
func (l *Launcher) Launch(ctx context.Context, opts harness.BrowserOptions) (harness.Driver, error) {
	pw, err := l.start()
	if err != nil {
		return nil, err
	}

	args := []string{"--start-maximized"}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight))
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		contextOpts.Viewport = &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	if l.ActionTimeout > 0 {
		page.SetDefaultTimeout(float64(l.ActionTimeout.Milliseconds()))
	}

	obs.From(ctx).Debug("playwright_browser_launched", "pkg", "pwdriver", "headless", opts.Headless)
	return &driver{browser: browser, context: bctx, page: page}, nil
}

// Stop shuts the playwright driver down. Browsers launched earlier must be
// quit first.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

type driver struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (d *driver) Navigate(_ context.Context, url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (d *driver) Query(_ context.Context, sel harness.Selector) ([]harness.Element, error) {
	locators, err := d.page.Locator(LocatorString(sel)).All()
	if err != nil {
		return nil, queryError(err)
	}
	out := make([]harness.Element, 0, len(locators))
	for _, loc := range locators {
		out = append(out, &element{loc: loc})
	}
	return out, nil
}

// queryError marks a closed page as permanent so waits stop polling it.
func queryError(err error) error {
	if errors.Is(err, playwright.ErrTargetClosed) {
		return wait.Permanent(err)
	}
	return err
}

func (d *driver) CurrentURL(context.Context) (string, error) {
	return d.page.URL(), nil
}

func (d *driver) Maximize(_ context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	return d.page.SetViewportSize(width, height)
}

func (d *driver) Quit() error {
	ctxErr := d.context.Close()
	if err := d.browser.Close(); err != nil {
		return err
	}
	return ctxErr
}

// LocatorString renders a selector in playwright's selector syntax.
func LocatorString(sel harness.Selector) string {
	if css, ok := sel.CSS(); ok {
		return css
	}
	return "xpath=" + sel.Value
}

type element struct {
	loc playwright.Locator
}

func (e *element) Text() (string, error) { return e.loc.InnerText() }

func (e *element) Attribute(name string) (string, bool, error) {
	present, err := e.loc.Evaluate(`(el, name) => el.hasAttribute(name)`, name)
	if err != nil {
		return "", false, err
	}
	if ok, _ := present.(bool); !ok {
		return "", false, nil
	}
	v, err := e.loc.GetAttribute(name)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (e *element) Visible() (bool, error) { return e.loc.IsVisible() }
func (e *element) Enabled() (bool, error) { return e.loc.IsEnabled() }
func (e *element) Click() error           { return e.loc.Click() }
func (e *element) SendKeys(text string) error {
	return e.loc.Fill(text)
}

func (e *element) SelectOption(value string) error {
	_, err := e.loc.SelectOption(playwright.SelectOptionValues{Values: playwright.StringSlice(value)})
	return err
}
