// Package harness provisions one browser session per test case, drives it
// through storefront pages and exposes the DOM state tests assert on.
//
// Every element lookup is bounded by the implicit wait. Helpers that trigger
// a page transition return only after an observable readiness signal (title
// text, element visibility) and never sleep.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kuitang/storefront-e2e/internal/config"
	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/logutil"
	"github.com/kuitang/storefront-e2e/internal/obs"
	"github.com/kuitang/storefront-e2e/internal/urlutil"
	"github.com/kuitang/storefront-e2e/internal/wait"
)

// Options configures one session.
type Options struct {
	EntryURL     string
	Browser      BrowserOptions
	ImplicitWait time.Duration
	ExplicitWait time.Duration
	PollInterval time.Duration
	Test         string
}

// OptionsFromConfig builds session options from suite configuration.
func OptionsFromConfig(cfg *config.Config, entryURL string) Options {
	return Options{
		EntryURL: entryURL,
		Browser: BrowserOptions{
			Headless:       cfg.Headless,
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
		},
		ImplicitWait: cfg.ImplicitWait,
		ExplicitWait: cfg.ExplicitWait,
		PollInterval: cfg.PollInterval,
	}
}

// Session is one browser process scoped to a single test case.
type Session struct {
	id       string
	driver   Driver
	entryURL string
	implicit wait.Waiter
	explicit wait.Waiter
	log      *slog.Logger

	mu    sync.Mutex
	ended bool
}

// Start launches a browser, applies the implicit wait bound, maximizes the
// viewport and opens the entry URL. Any failure releases the browser and
// returns an errs.SessionLaunch error.
func Start(ctx context.Context, launcher Launcher, opts Options) (*Session, error) {
	if strings.TrimSpace(opts.EntryURL) == "" {
		return nil, errs.New(errs.InvalidArgument, "session entry URL is required")
	}
	if opts.ImplicitWait <= 0 || opts.ExplicitWait <= 0 {
		return nil, errs.New(errs.InvalidArgument, "session wait bounds must be positive")
	}

	id := uuid.NewString()
	ctx = obs.WithCorrelation(ctx, obs.Correlation{SessionID: id, Test: opts.Test})
	log := obs.From(ctx).With("pkg", "harness")

	driver, err := launcher.Launch(ctx, opts.Browser)
	if err != nil {
		return nil, errs.Wrap(errs.SessionLaunch, "launch browser", err)
	}

	s := &Session{
		id:       id,
		driver:   driver,
		entryURL: urlutil.NormalizeBase(opts.EntryURL),
		implicit: wait.New(opts.ImplicitWait, opts.PollInterval),
		explicit: wait.New(opts.ExplicitWait, opts.PollInterval),
		log:      log,
	}

	if err := driver.Maximize(ctx, opts.Browser.ViewportWidth, opts.Browser.ViewportHeight); err != nil {
		_ = s.End()
		return nil, errs.Wrap(errs.SessionLaunch, "maximize viewport", err)
	}
	if err := driver.Navigate(ctx, urlutil.BuildAbsolute(s.entryURL, "/")); err != nil {
		_ = s.End()
		return nil, errs.Wrap(errs.SessionLaunch, "open entry URL "+s.entryURL, err)
	}

	log.Info("session_started", "entry_url", s.entryURL)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// End quits the browser. It is safe to call on a nil session and more than once.
func (s *Session) End() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil
	}
	s.ended = true

	if err := s.driver.Quit(); err != nil {
		s.log.Warn("session_quit_failed", "error", err)
		return fmt.Errorf("quit browser: %w", err)
	}
	s.log.Info("session_ended")
	return nil
}

func (s *Session) active() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return errs.New(errs.Internal, "session already ended")
	}
	return nil
}

// query runs one lookup inside a wait. Ending the session mid-wait stops the
// wait instead of polling a closed browser until the bound.
func (s *Session) query(ctx context.Context, sel Selector) ([]Element, error) {
	if err := s.active(); err != nil {
		return nil, wait.Permanent(err)
	}
	return s.driver.Query(ctx, sel)
}

// Visit opens a path relative to the entry URL.
func (s *Session) Visit(ctx context.Context, path string) error {
	if err := s.active(); err != nil {
		return err
	}
	target := urlutil.BuildAbsolute(s.entryURL, "/"+strings.TrimLeft(path, "/"))
	s.log.Debug("visit", "url", target)
	if err := s.driver.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	return nil
}

// CurrentURL returns the page URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	if err := s.active(); err != nil {
		return "", err
	}
	return s.driver.CurrentURL(ctx)
}

// Find returns the first element matching sel, polling up to the implicit
// wait. A miss returns an errs.ElementNotFound error naming the selector.
func (s *Session) Find(ctx context.Context, sel Selector) (Element, error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	var found Element
	err := s.implicit.Until(ctx, func(ctx context.Context) (bool, error) {
		els, err := s.query(ctx, sel)
		if err != nil {
			return false, err
		}
		if len(els) == 0 {
			return false, nil
		}
		found = els[0]
		return true, nil
	}, wait.Describe("element %s", sel))
	if err != nil && errs.CodeOf(err) != errs.Timeout {
		return nil, err
	}
	if err != nil {
		return nil, errs.Wrap(errs.ElementNotFound, "element "+sel.String()+" not found", err)
	}
	return found, nil
}

// FindAll returns every element matching sel right now, possibly none.
// Callers wait for readiness first.
func (s *Session) FindAll(ctx context.Context, sel Selector) ([]Element, error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	els, err := s.driver.Query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", sel, err)
	}
	return els, nil
}

// Text returns the visible text of the first element matching sel.
func (s *Session) Text(ctx context.Context, sel Selector) (string, error) {
	el, err := s.Find(ctx, sel)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", sel, err)
	}
	return strings.TrimSpace(text), nil
}

// Texts returns the visible text of every element matching sel.
func (s *Session) Texts(ctx context.Context, sel Selector) ([]string, error) {
	els, err := s.FindAll(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(els))
	for i, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read text of %s[%d]: %w", sel, i, err)
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, nil
}

// Count returns how many elements match sel right now.
func (s *Session) Count(ctx context.Context, sel Selector) (int, error) {
	els, err := s.FindAll(ctx, sel)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// IsDisplayed reports whether the first element matching sel is visible.
func (s *Session) IsDisplayed(ctx context.Context, sel Selector) (bool, error) {
	el, err := s.Find(ctx, sel)
	if err != nil {
		return false, err
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("visibility of %s: %w", sel, err)
	}
	return visible, nil
}

// Attribute returns an attribute of the first element matching sel.
func (s *Session) Attribute(ctx context.Context, sel Selector, name string) (string, bool, error) {
	el, err := s.Find(ctx, sel)
	if err != nil {
		return "", false, err
	}
	return el.Attribute(name)
}

// Click clicks the first element matching sel.
func (s *Session) Click(ctx context.Context, sel Selector) error {
	el, err := s.Find(ctx, sel)
	if err != nil {
		return err
	}
	s.log.Debug("click", "selector", sel.String())
	if err := el.Click(); err != nil {
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

// Type sends text to the first element matching sel.
func (s *Session) Type(ctx context.Context, sel Selector, text string) error {
	el, err := s.Find(ctx, sel)
	if err != nil {
		return err
	}
	s.log.Debug("type", "selector", sel.String(), "value", logutil.Redact(sel.Value, text))
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("type into %s: %w", sel, err)
	}
	return nil
}

// WaitForText waits until the first element matching sel contains text.
func (s *Session) WaitForText(ctx context.Context, sel Selector, text string, opts ...wait.Option) error {
	if err := s.active(); err != nil {
		return err
	}
	opts = append([]wait.Option{wait.Describe("text %q in %s", text, sel)}, opts...)
	return s.explicit.Until(ctx, func(ctx context.Context) (bool, error) {
		els, err := s.query(ctx, sel)
		if err != nil {
			return false, err
		}
		if len(els) == 0 {
			return false, fmt.Errorf("%s not present", sel)
		}
		got, err := els[0].Text()
		if err != nil {
			return false, err
		}
		if strings.Contains(got, text) {
			return true, nil
		}
		return false, fmt.Errorf("%s text is %q", sel, logutil.Preview(got, 120))
	}, opts...)
}

// WaitVisible waits until an element matching sel is visible and returns it.
func (s *Session) WaitVisible(ctx context.Context, sel Selector, opts ...wait.Option) (Element, error) {
	return s.waitElement(ctx, sel, false, opts...)
}

// WaitClickable waits until an element matching sel is visible and enabled.
func (s *Session) WaitClickable(ctx context.Context, sel Selector, opts ...wait.Option) (Element, error) {
	return s.waitElement(ctx, sel, true, opts...)
}

func (s *Session) waitElement(ctx context.Context, sel Selector, needEnabled bool, opts ...wait.Option) (Element, error) {
	if err := s.active(); err != nil {
		return nil, err
	}
	state := "visible"
	if needEnabled {
		state = "clickable"
	}
	opts = append([]wait.Option{wait.Describe("%s to be %s", sel, state)}, opts...)

	var found Element
	err := s.explicit.Until(ctx, func(ctx context.Context) (bool, error) {
		els, err := s.query(ctx, sel)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			visible, err := el.Visible()
			if err != nil || !visible {
				continue
			}
			if needEnabled {
				enabled, err := el.Enabled()
				if err != nil || !enabled {
					continue
				}
			}
			found = el
			return true, nil
		}
		return false, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// WaitGone waits until nothing matches sel.
func (s *Session) WaitGone(ctx context.Context, sel Selector, opts ...wait.Option) error {
	if err := s.active(); err != nil {
		return err
	}
	opts = append([]wait.Option{wait.Describe("%s to disappear", sel)}, opts...)
	return s.explicit.Until(ctx, func(ctx context.Context) (bool, error) {
		els, err := s.query(ctx, sel)
		if err != nil {
			return false, err
		}
		return len(els) == 0, nil
	}, opts...)
}
