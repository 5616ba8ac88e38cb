// Package fixture holds the declarative data the suite and the stand-in
// storefront share: credentials and their expected outcomes, the product
// catalogue, checkout inputs, sort options and page constants.
package fixture

import (
	"fmt"
	"strings"
)

// Page constants observed on the target application.
const (
	InventoryTitle   = "Products"
	CartTitle        = "Your Cart"
	CheckoutTitle    = "Checkout: Your Information"
	OverviewTitle    = "Checkout: Overview"
	CompleteTitle    = "Checkout: Complete!"
	CompleteHeader   = "Thank you for your order!"
	CompleteText     = "Your order has been dispatched, and will arrive just as fast as the pony can get there!"
	CompleteTextStem = "Your order has been dispatched"
	ErrorPrefix      = "Epic sadface"

	ValidPassword = "secret_sauce"

	InventoryPath = "/inventory.html"
	CartPath      = "/cart.html"
	StepOnePath   = "/checkout-step-one.html"
	StepTwoPath   = "/checkout-step-two.html"
	CompletePath  = "/checkout-complete.html"

	// TaxRatePercent is applied to the item total on the overview page.
	TaxRatePercent = 8
)

// Outcome is the expected result of a login attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRejected
)

// Credential pairs a login attempt with its expected outcome. ErrorContains
// is only meaningful for rejected attempts.
type Credential struct {
	Name          string
	Username      string
	Password      string
	Outcome       Outcome
	ErrorContains string
}

// Known users of the demo application.
const (
	StandardUser          = "standard_user"
	LockedOutUser         = "locked_out_user"
	ProblemUser           = "problem_user"
	PerformanceGlitchUser = "performance_glitch_user"
	ErrorUser             = "error_user"
	VisualUser            = "visual_user"
)

// AcceptedUsers can log in with ValidPassword.
var AcceptedUsers = []string{
	StandardUser,
	ProblemUser,
	PerformanceGlitchUser,
	ErrorUser,
	VisualUser,
}

// Valid is the credential every non-login scenario starts from.
var Valid = Credential{
	Name:     "valid",
	Username: StandardUser,
	Password: ValidPassword,
	Outcome:  OutcomeSuccess,
}

// Credentials is the parametrized login table.
var Credentials = []Credential{
	Valid,
	{
		Name:          "wrong_password",
		Username:      StandardUser,
		Password:      "wrong_password",
		Outcome:       OutcomeRejected,
		ErrorContains: "do not match any user",
	},
	{
		Name:          "wrong_username",
		Username:      "invalid_user",
		Password:      ValidPassword,
		Outcome:       OutcomeRejected,
		ErrorContains: "do not match any user",
	},
	{
		Name:          "empty_username",
		Username:      "",
		Password:      ValidPassword,
		Outcome:       OutcomeRejected,
		ErrorContains: "Username is required",
	},
	{
		Name:          "empty_password",
		Username:      StandardUser,
		Password:      "",
		Outcome:       OutcomeRejected,
		ErrorContains: "Password is required",
	},
	{
		Name:          "locked_out",
		Username:      LockedOutUser,
		Password:      ValidPassword,
		Outcome:       OutcomeRejected,
		ErrorContains: "locked out",
	},
}

// Rejected returns the credentials expected to fail.
func Rejected() []Credential {
	var out []Credential
	for _, c := range Credentials {
		if c.Outcome == OutcomeRejected {
			out = append(out, c)
		}
	}
	return out
}

// Product is one catalogue entry.
type Product struct {
	ID          int
	Name        string
	Slug        string
	PriceCents  int64
	Description string
}

// AddButtonID is the element id of the inventory "Add to cart" button.
func (p Product) AddButtonID() string { return "add-to-cart-" + p.Slug }

// RemoveButtonID is the element id of the "Remove" button.
func (p Product) RemoveButtonID() string { return "remove-" + p.Slug }

// Price formats the price the way the page displays it.
func (p Product) Price() string { return FormatCents(p.PriceCents) }

// Products is the demo catalogue, in the application's default order.
var Products = []Product{
	{
		ID:          4,
		Name:        "Sauce Labs Backpack",
		Slug:        "sauce-labs-backpack",
		PriceCents:  2999,
		Description: "carry.allTheThings() with the sleek, streamlined Sly Pack that melds uncompromising style with unequaled laptop and tablet protection.",
	},
	{
		ID:          0,
		Name:        "Sauce Labs Bike Light",
		Slug:        "sauce-labs-bike-light",
		PriceCents:  999,
		Description: "A red light isn't the desired state in testing but it sure helps when riding your bike at night. Water-resistant with 3 lighting modes, 1 AAA battery included.",
	},
	{
		ID:          1,
		Name:        "Sauce Labs Bolt T-Shirt",
		Slug:        "sauce-labs-bolt-t-shirt",
		PriceCents:  1599,
		Description: "Get your testing superhero on with the Sauce Labs bolt T-shirt. From American Apparel, 100% ringspun combed cotton, heather gray with red bolt.",
	},
	{
		ID:          5,
		Name:        "Sauce Labs Fleece Jacket",
		Slug:        "sauce-labs-fleece-jacket",
		PriceCents:  4999,
		Description: "It's not every day that you come across a midweight quarter-zip fleece jacket capable of handling everything from a relaxing day outdoors to a busy day at the office.",
	},
	{
		ID:          2,
		Name:        "Sauce Labs Onesie",
		Slug:        "sauce-labs-onesie",
		PriceCents:  799,
		Description: "Rib snap infant onesie for the junior automation engineer in development. Reinforced 3-snap bottom closure, two-needle hemmed sleeved and bottom won't unravel.",
	},
	{
		ID:          3,
		Name:        "Test.allTheThings() T-Shirt (Red)",
		Slug:        "test.allthethings()-t-shirt-(red)",
		PriceCents:  1599,
		Description: "This classic Sauce Labs t-shirt is perfect to wear when cozying up to your keyboard to automate a few tests. Super-soft and comfy ringspun combed cotton.",
	},
}

// ExpectedProductCount is the number of cards the inventory page renders.
var ExpectedProductCount = len(Products)

// Named catalogue entries used by scenarios.
var (
	Backpack   = MustProduct("sauce-labs-backpack")
	BikeLight  = MustProduct("sauce-labs-bike-light")
	BoltTShirt = MustProduct("sauce-labs-bolt-t-shirt")
)

// ProductBySlug looks a product up by its DOM slug.
func ProductBySlug(slug string) (Product, bool) {
	for _, p := range Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

// MustProduct is ProductBySlug for package-level tables.
func MustProduct(slug string) Product {
	p, ok := ProductBySlug(slug)
	if !ok {
		panic(fmt.Sprintf("fixture: unknown product slug %q", slug))
	}
	return p
}

// FormatCents renders cents as "$D.DD".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// TaxCents returns the overview page's tax for an item total, rounded half up.
func TaxCents(itemTotal int64) int64 {
	return (itemTotal*TaxRatePercent + 50) / 100
}

// CheckoutInfo is the form on the first checkout step.
type CheckoutInfo struct {
	FirstName  string
	LastName   string
	PostalCode string
}

// Checkout field labels as they appear in validation errors.
const (
	FieldFirstName  = "First Name"
	FieldLastName   = "Last Name"
	FieldPostalCode = "Postal Code"
)

// Customers used by the happy-path checkout scenarios.
var (
	Customer        = CheckoutInfo{FirstName: "John", LastName: "Doe", PostalCode: "12345"}
	SummaryCustomer = CheckoutInfo{FirstName: "Anna", LastName: "Smith", PostalCode: "54321"}
)

// MissingFieldCase omits one required checkout field.
type MissingFieldCase struct {
	Field string
	Info  CheckoutInfo
}

// ExpectedError is the substring the banner must contain.
func (c MissingFieldCase) ExpectedError() string {
	return c.Field + " is required"
}

// MissingFieldCases covers each required field once. Validation reports
// the first missing field in form order.
var MissingFieldCases = []MissingFieldCase{
	{Field: FieldFirstName, Info: CheckoutInfo{LastName: "Doe", PostalCode: "12345"}},
	{Field: FieldLastName, Info: CheckoutInfo{FirstName: "John", PostalCode: "12345"}},
	{Field: FieldPostalCode, Info: CheckoutInfo{FirstName: "John", LastName: "Doe"}},
}

// MissingField returns the label of the first empty field, or "".
func (c CheckoutInfo) MissingField() string {
	switch {
	case strings.TrimSpace(c.FirstName) == "":
		return FieldFirstName
	case strings.TrimSpace(c.LastName) == "":
		return FieldLastName
	case strings.TrimSpace(c.PostalCode) == "":
		return FieldPostalCode
	default:
		return ""
	}
}

// SortKey is the attribute a sort option orders by.
type SortKey int

const (
	SortByName SortKey = iota
	SortByPrice
)

// SortOption is one entry of the product sort dropdown.
type SortOption struct {
	Value      string
	Label      string
	Key        SortKey
	Descending bool
}

// SortOptions lists the dropdown entries in page order.
var SortOptions = []SortOption{
	{Value: "az", Label: "Name (A to Z)", Key: SortByName},
	{Value: "za", Label: "Name (Z to A)", Key: SortByName, Descending: true},
	{Value: "lohi", Label: "Price (low to high)", Key: SortByPrice},
	{Value: "hilo", Label: "Price (high to low)", Key: SortByPrice, Descending: true},
}

// SortOptionByValue finds a dropdown entry by its option value.
func SortOptionByValue(value string) (SortOption, bool) {
	for _, o := range SortOptions {
		if o.Value == value {
			return o, true
		}
	}
	return SortOption{}, false
}
