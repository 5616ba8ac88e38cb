package harness

import (
	"context"
	"errors"
	"sync"
)

// fakeElement is an in-memory DOM node.
type fakeElement struct {
	text     string
	attrs    map[string]string
	hidden   bool
	disabled bool
	typed    string
	selected string
	clicks   int

	onClick  func()
	onSelect func(value string)
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Visible() (bool, error) { return !e.hidden, nil }
func (e *fakeElement) Enabled() (bool, error) { return !e.disabled, nil }

func (e *fakeElement) Click() error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.typed += text
	return nil
}

func (e *fakeElement) SelectOption(value string) error {
	e.selected = value
	if e.onSelect != nil {
		e.onSelect(value)
	}
	return nil
}

// fakeDriver keeps a selector-indexed DOM so helpers can be exercised
// without a browser.
type fakeDriver struct {
	mu        sync.Mutex
	nodes     map[Selector][]*fakeElement
	queries   map[Selector]int
	hideUntil map[Selector]int

	url       string
	visited   []string
	maximized [2]int
	quits     int

	navigateErr error
	maximizeErr error
	quitErr     error

	// onQuery runs after every query with the per-selector query count.
	onQuery func(sel Selector, n int)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		nodes:     map[Selector][]*fakeElement{},
		queries:   map[Selector]int{},
		hideUntil: map[Selector]int{},
	}
}

func (d *fakeDriver) put(sel Selector, els ...*fakeElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes[sel] = els
}

func (d *fakeDriver) remove(sel Selector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.nodes, sel)
}

// appearAfter hides sel from the first n queries.
func (d *fakeDriver) appearAfter(sel Selector, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hideUntil[sel] = n
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	if d.navigateErr != nil {
		return d.navigateErr
	}
	d.url = url
	d.visited = append(d.visited, url)
	return nil
}

func (d *fakeDriver) Query(_ context.Context, sel Selector) ([]Element, error) {
	d.mu.Lock()
	d.queries[sel]++
	n := d.queries[sel]
	var out []Element
	if n > d.hideUntil[sel] {
		for _, el := range d.nodes[sel] {
			out = append(out, el)
		}
	}
	hook := d.onQuery
	d.mu.Unlock()
	if hook != nil {
		hook(sel, n)
	}
	return out, nil
}

func (d *fakeDriver) CurrentURL(context.Context) (string, error) { return d.url, nil }

func (d *fakeDriver) Maximize(_ context.Context, width, height int) error {
	if d.maximizeErr != nil {
		return d.maximizeErr
	}
	d.maximized = [2]int{width, height}
	return nil
}

func (d *fakeDriver) Quit() error {
	d.quits++
	return d.quitErr
}

type fakeLauncher struct {
	driver   *fakeDriver
	err      error
	launched int
	opts     BrowserOptions
}

func (l *fakeLauncher) Launch(_ context.Context, opts BrowserOptions) (Driver, error) {
	l.launched++
	l.opts = opts
	if l.err != nil {
		return nil, l.err
	}
	return l.driver, nil
}

var errFake = errors.New("fake failure")
