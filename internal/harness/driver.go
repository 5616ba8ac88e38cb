package harness

import (
	"context"
	"fmt"
	"strings"
)

// Strategy is how a Selector locates elements.
type Strategy int

const (
	StrategyID Strategy = iota
	StrategyClass
	StrategyCSS
	StrategyXPath
)

// Selector is a stable DOM locator.
type Selector struct {
	Strategy Strategy
	Value    string
}

// ByID locates by element id. Ids are matched as attribute values so slugs
// containing dots or parentheses need no escaping.
func ByID(id string) Selector { return Selector{Strategy: StrategyID, Value: id} }

// ByClass locates by a single class name.
func ByClass(class string) Selector { return Selector{Strategy: StrategyClass, Value: class} }

// ByCSS locates by an arbitrary CSS selector.
func ByCSS(css string) Selector { return Selector{Strategy: StrategyCSS, Value: css} }

// ByXPath locates by an XPath expression.
func ByXPath(xpath string) Selector { return Selector{Strategy: StrategyXPath, Value: xpath} }

// CSS renders the selector as CSS. ok is false for XPath selectors.
func (s Selector) CSS() (css string, ok bool) {
	switch s.Strategy {
	case StrategyID:
		return fmt.Sprintf(`[id="%s"]`, strings.ReplaceAll(s.Value, `"`, `\"`)), true
	case StrategyClass:
		return "." + s.Value, true
	case StrategyCSS:
		return s.Value, true
	default:
		return "", false
	}
}

func (s Selector) String() string {
	switch s.Strategy {
	case StrategyID:
		return "id=" + s.Value
	case StrategyClass:
		return "class=" + s.Value
	case StrategyXPath:
		return "xpath=" + s.Value
	default:
		return "css=" + s.Value
	}
}

// BrowserOptions configures one browser launch.
type BrowserOptions struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
}

// Launcher starts browser processes. Each Launch owns a new process.
type Launcher interface {
	Launch(ctx context.Context, opts BrowserOptions) (Driver, error)
}

// Driver is the capability set the harness needs from a browser automation
// library. Query never waits; waiting is the harness's job.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Query(ctx context.Context, sel Selector) ([]Element, error)
	CurrentURL(ctx context.Context) (string, error)
	Maximize(ctx context.Context, width, height int) error
	Quit() error
}

// Element is a handle to one DOM node.
type Element interface {
	Text() (string, error)
	Attribute(name string) (value string, ok bool, err error)
	Visible() (bool, error)
	Enabled() (bool, error)
	Click() error
	SendKeys(text string) error
	SelectOption(value string) error
}
