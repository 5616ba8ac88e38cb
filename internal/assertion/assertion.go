// Package assertion compares observed page state against expectations.
// Every check returns nil or an errs.AssertionMismatch error carrying both
// the expected and the observed value, so a failing test reports what it saw.
package assertion

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/kuitang/storefront-e2e/internal/errs"
)

// PricePattern is the currency shape of item prices: a dollar sign, whole
// dollars and exactly two decimal places.
var PricePattern = regexp.MustCompile(`^\$\d+\.\d{2}$`)

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

func mismatch(what string, expected, observed any) error {
	return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: expected %v, observed %v", what, quote(expected), quote(observed)))
}

func quote(v any) any {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return v
}

// Equal checks observed == expected.
func Equal[T comparable](what string, expected, observed T) error {
	if expected == observed {
		return nil
	}
	return mismatch(what, expected, observed)
}

// Contains checks that observed contains substr.
func Contains(what, observed, substr string) error {
	if strings.Contains(observed, substr) {
		return nil
	}
	return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: expected to contain %q, observed %q", what, substr, observed))
}

// CountEquals checks a cardinality.
func CountEquals(what string, expected, observed int) error {
	if expected == observed {
		return nil
	}
	return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: expected %d, observed %d", what, expected, observed))
}

// NotEmpty checks that no value is blank. It names the first blank index.
func NotEmpty(what string, values []string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s[%d]: expected non-empty text, observed %q", what, i, v))
		}
	}
	return nil
}

// MatchesPattern checks every value against re.
func MatchesPattern(what string, re *regexp.Regexp, values ...string) error {
	for i, v := range values {
		if !re.MatchString(v) {
			return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s[%d]: expected to match %s, observed %q", what, i, re, v))
		}
	}
	return nil
}

// SequenceEquals checks two sequences element by element and reports a diff.
func SequenceEquals[T comparable](what string, expected, observed []T) error {
	if slices.Equal(expected, observed) {
		return nil
	}
	return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: sequence mismatch (-expected +observed):\n%s", what, cmp.Diff(expected, observed)))
}

// SortedStrings checks that values are already in the given lexicographic
// order.
func SortedStrings(what string, values []string, order Order) error {
	return sorted(what, values, order, strings.Compare)
}

// SortedFloats checks that values are already in the given numeric order.
func SortedFloats(what string, values []float64, order Order) error {
	return sorted(what, values, order, func(a, b float64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}

func sorted[T any](what string, values []T, order Order, compare func(a, b T) int) error {
	want := slices.Clone(values)
	slices.SortStableFunc(want, func(a, b T) int {
		if order == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	for i := range values {
		if compare(values[i], want[i]) != 0 {
			return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: not in %s order (-expected +observed):\n%s", what, order, cmp.Diff(want, values)))
		}
	}
	return nil
}

// SumEquals checks that prices add up to total: the difference must round
// to zero at places decimal places.
func SumEquals(what string, prices []float64, total float64, places int) error {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	if Round(sum-total, places) == 0 {
		return nil
	}
	return errs.New(errs.AssertionMismatch, fmt.Sprintf("%s: expected sum %.*f, observed %.*f (from %v)", what, places, total, places, sum, prices))
}

// Round rounds v half away from zero to places decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// ParsePrice parses a displayed price such as "$29.99".
func ParsePrice(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	digits, ok := strings.CutPrefix(raw, "$")
	if !ok {
		return 0, errs.New(errs.InvalidArgument, fmt.Sprintf("price %q has no currency symbol", s))
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errs.Wrap(errs.InvalidArgument, fmt.Sprintf("price %q is not a valid amount", s), err)
	}
	return v, nil
}

// ParsePrices parses every displayed price, failing on the first bad one.
func ParsePrices(values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		p, err := ParsePrice(v)
		if err != nil {
			return nil, fmt.Errorf("price %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseLabeledPrice parses a summary line such as "Item total: $39.98".
func ParseLabeledPrice(s string) (float64, error) {
	_, amount, ok := strings.Cut(s, ":")
	if !ok {
		return 0, errs.New(errs.InvalidArgument, fmt.Sprintf("summary line %q has no label", s))
	}
	return ParsePrice(amount)
}
