package harness

import "github.com/kuitang/storefront-e2e/internal/fixture"

// Selectors of the storefront pages.
var (
	UsernameInput = ByID("user-name")
	PasswordInput = ByID("password")
	LoginButton   = ByID("login-button")
	ErrorBanner   = ByCSS("[data-test='error']")

	PageTitle          = ByClass("title")
	InventoryContainer = ByID("inventory_container")
	InventoryItem      = ByClass("inventory_item")
	ItemName           = ByClass("inventory_item_name")
	ItemPrice          = ByClass("inventory_item_price")
	SortSelect         = ByClass("product_sort_container")
	ActiveSortOption   = ByClass("active_option")

	CartLink      = ByClass("shopping_cart_link")
	CartBadge     = ByClass("shopping_cart_badge")
	CartItem      = ByClass("cart_item")
	CartItemName  = ByCSS(".cart_item .inventory_item_name")
	CartItemPrice = ByCSS(".cart_item .inventory_item_price")

	ContinueShoppingButton = ByID("continue-shopping")
	CheckoutButton         = ByID("checkout")

	FirstNameInput  = ByID("first-name")
	LastNameInput   = ByID("last-name")
	PostalCodeInput = ByID("postal-code")
	ContinueButton  = ByID("continue")
	CancelButton    = ByID("cancel")
	FinishButton    = ByID("finish")

	SubtotalLabel = ByClass("summary_subtotal_label")
	TaxLabel      = ByClass("summary_tax_label")
	TotalLabel    = ByClass("summary_total_label")

	CompleteHeader = ByClass("complete-header")
	CompleteText   = ByClass("complete-text")
	BackHomeButton = ByID("back-to-products")

	MenuButton = ByID("react-burger-menu-btn")
	LogoutLink = ByID("logout_sidebar_link")
)

// AddToCartButton is the inventory button that adds p.
func AddToCartButton(p fixture.Product) Selector { return ByID(p.AddButtonID()) }

// RemoveButton is the button that removes p, on inventory and cart pages.
func RemoveButton(p fixture.Product) Selector { return ByID(p.RemoveButtonID()) }
