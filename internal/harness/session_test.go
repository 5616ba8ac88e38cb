package harness

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kuitang/storefront-e2e/internal/config"
	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/wait"
)

func testOptions() Options {
	return Options{
		EntryURL:     "http://storefront.test",
		Browser:      BrowserOptions{Headless: true, ViewportWidth: 1920, ViewportHeight: 1080},
		ImplicitWait: 80 * time.Millisecond,
		ExplicitWait: 80 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		Test:         "harness",
	}
}

func startFake(t *testing.T) (*Session, *fakeDriver) {
	t.Helper()
	d := newFakeDriver()
	s, err := Start(context.Background(), &fakeLauncher{driver: d}, testOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.End() })
	return s, d
}

func TestSelector_Rendering(t *testing.T) {
	cases := []struct {
		sel      Selector
		css      string
		cssOK    bool
		rendered string
	}{
		{ByID("user-name"), `[id="user-name"]`, true, "id=user-name"},
		{ByID("add-to-cart-test.allthethings()-t-shirt-(red)"), `[id="add-to-cart-test.allthethings()-t-shirt-(red)"]`, true, "id=add-to-cart-test.allthethings()-t-shirt-(red)"},
		{ByClass("title"), ".title", true, "class=title"},
		{ByCSS("[data-test='error']"), "[data-test='error']", true, "css=[data-test='error']"},
		{ByXPath("//option[@value='az']"), "", false, "xpath=//option[@value='az']"},
	}
	for _, tc := range cases {
		css, ok := tc.sel.CSS()
		require.Equal(t, tc.css, css)
		require.Equal(t, tc.cssOK, ok)
		require.Equal(t, tc.rendered, tc.sel.String())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Headless:       false,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		ImplicitWait:   time.Second,
		ExplicitWait:   2 * time.Second,
		PollInterval:   10 * time.Millisecond,
	}
	opts := OptionsFromConfig(cfg, "http://x")
	require.Equal(t, "http://x", opts.EntryURL)
	require.Equal(t, BrowserOptions{Headless: false, ViewportWidth: 1280, ViewportHeight: 720}, opts.Browser)
	require.Equal(t, time.Second, opts.ImplicitWait)
	require.Equal(t, 2*time.Second, opts.ExplicitWait)
}

func TestStart_MaximizesAndOpensEntryURL(t *testing.T) {
	s, d := startFake(t)
	require.NotEmpty(t, s.ID())
	require.Equal(t, [2]int{1920, 1080}, d.maximized)
	require.Equal(t, []string{"http://storefront.test/"}, d.visited)

	url, err := s.CurrentURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "http://storefront.test/", url)
}

func TestStart_LaunchFailureIsSessionLaunch(t *testing.T) {
	l := &fakeLauncher{err: errFake}
	s, err := Start(context.Background(), l, testOptions())
	require.Nil(t, s)
	require.Equal(t, errs.SessionLaunch, errs.CodeOf(err))
	require.ErrorIs(t, err, errFake)
}

func TestStart_NavigateFailureReleasesBrowser(t *testing.T) {
	d := newFakeDriver()
	d.navigateErr = errFake
	_, err := Start(context.Background(), &fakeLauncher{driver: d}, testOptions())
	require.Equal(t, errs.SessionLaunch, errs.CodeOf(err))
	require.Equal(t, 1, d.quits, "browser must be quit when start fails")
}

func TestStart_MaximizeFailureReleasesBrowser(t *testing.T) {
	d := newFakeDriver()
	d.maximizeErr = errFake
	_, err := Start(context.Background(), &fakeLauncher{driver: d}, testOptions())
	require.Equal(t, errs.SessionLaunch, errs.CodeOf(err))
	require.Equal(t, 1, d.quits)
}

func TestStart_RejectsBadOptions(t *testing.T) {
	l := &fakeLauncher{driver: newFakeDriver()}

	opts := testOptions()
	opts.EntryURL = " "
	_, err := Start(context.Background(), l, opts)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))

	opts = testOptions()
	opts.ImplicitWait = 0
	_, err = Start(context.Background(), l, opts)
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
	require.Zero(t, l.launched, "no browser may be launched for invalid options")
}

func TestEnd_IdempotentAndNilSafe(t *testing.T) {
	s, d := startFake(t)
	require.NoError(t, s.End())
	require.NoError(t, s.End())
	require.Equal(t, 1, d.quits)

	var nilSession *Session
	require.NoError(t, nilSession.End())

	_, err := s.Find(context.Background(), PageTitle)
	require.Error(t, err, "ended session must refuse lookups")
}

func TestEnd_ReportsQuitError(t *testing.T) {
	s, d := startFake(t)
	d.quitErr = errFake
	require.ErrorIs(t, s.End(), errFake)
	require.NoError(t, s.End(), "second End is a no-op even after a failed quit")
}

func TestEnd_StopsPendingWaits(t *testing.T) {
	s, d := startFake(t)
	d.put(CartBadge, &fakeElement{text: "1"})
	d.onQuery = func(sel Selector, n int) {
		if n == 2 {
			_ = s.End()
		}
	}

	start := time.Now()
	err := s.WaitGone(context.Background(), CartBadge, wait.WithTimeout(5*time.Second))
	require.Equal(t, errs.Internal, errs.CodeOf(err))
	require.Contains(t, err.Error(), "session already ended")
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, 2, d.queries[CartBadge], "no lookups after the session ended")
}

func TestFind_EndedMidLookupIsNotElementNotFound(t *testing.T) {
	s, d := startFake(t)
	d.onQuery = func(sel Selector, n int) {
		if n == 1 {
			_ = s.End()
		}
	}
	_, err := s.Find(context.Background(), UsernameInput)
	require.Equal(t, errs.Internal, errs.CodeOf(err))
}

func TestFind_ElementNotFoundNamesSelector(t *testing.T) {
	s, _ := startFake(t)
	start := time.Now()
	_, err := s.Find(context.Background(), UsernameInput)
	require.Equal(t, errs.ElementNotFound, errs.CodeOf(err))
	require.Contains(t, err.Error(), "id=user-name")
	require.Less(t, time.Since(start), time.Second, "lookup must respect the implicit wait bound")
}

func TestFind_PollsUntilElementAppears(t *testing.T) {
	s, d := startFake(t)
	d.put(PageTitle, &fakeElement{text: "Products"})
	d.appearAfter(PageTitle, 3)

	text, err := s.Text(context.Background(), PageTitle)
	require.NoError(t, err)
	require.Equal(t, "Products", text)
	require.Equal(t, 4, d.queries[PageTitle])
}

func TestTextsCountAndDisplayed(t *testing.T) {
	s, d := startFake(t)
	ctx := context.Background()
	d.put(ItemName, &fakeElement{text: " Sauce Labs Backpack "}, &fakeElement{text: "Sauce Labs Onesie"})
	d.put(SortSelect, &fakeElement{hidden: true, attrs: map[string]string{"data-test": "product-sort-container"}})

	names, err := s.Texts(ctx, ItemName)
	require.NoError(t, err)
	require.Equal(t, []string{"Sauce Labs Backpack", "Sauce Labs Onesie"}, names)

	n, err := s.Count(ctx, ItemName)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = s.Count(ctx, CartItem)
	require.NoError(t, err)
	require.Zero(t, n, "Count does not wait and reports empty lists")

	shown, err := s.IsDisplayed(ctx, SortSelect)
	require.NoError(t, err)
	require.False(t, shown)

	v, ok, err := s.Attribute(ctx, SortSelect, "data-test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "product-sort-container", v)
}

func TestWaitClickable_SkipsDisabledElements(t *testing.T) {
	s, d := startFake(t)
	disabled := &fakeElement{disabled: true}
	d.put(CheckoutButton, disabled)

	_, err := s.WaitClickable(context.Background(), CheckoutButton)
	require.Equal(t, errs.Timeout, errs.CodeOf(err))
	require.True(t, strings.Contains(err.Error(), "clickable"), err.Error())

	disabled.disabled = false
	el, err := s.WaitClickable(context.Background(), CheckoutButton)
	require.NoError(t, err)
	require.Same(t, disabled, el.(*fakeElement))
}

func TestVisit_JoinsEntryURL(t *testing.T) {
	s, d := startFake(t)
	require.NoError(t, s.Visit(context.Background(), "/inventory.html"))
	require.Equal(t, "http://storefront.test/inventory.html", d.url)
}
