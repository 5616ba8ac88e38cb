package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/fixture"
	"github.com/kuitang/storefront-e2e/internal/wait"
)

func TestLogin_FillsFormAndSubmits(t *testing.T) {
	s, d := startFake(t)
	user, pass, button := &fakeElement{}, &fakeElement{}, &fakeElement{}
	d.put(UsernameInput, user)
	d.put(PasswordInput, pass)
	d.put(LoginButton, button)

	require.NoError(t, s.LoginAs(context.Background(), fixture.Valid))
	require.Equal(t, fixture.StandardUser, user.typed)
	require.Equal(t, fixture.ValidPassword, pass.typed)
	require.Equal(t, 1, button.clicks)
}

func TestLogin_MissingFieldIsElementNotFound(t *testing.T) {
	s, d := startFake(t)
	d.put(UsernameInput, &fakeElement{})

	err := s.Login(context.Background(), "standard_user", "secret_sauce")
	require.Equal(t, errs.ElementNotFound, errs.CodeOf(err))
	require.Contains(t, err.Error(), "id=password")
}

func TestNavigateToCart_WaitsForCartTitle(t *testing.T) {
	s, d := startFake(t)
	title := &fakeElement{text: fixture.InventoryTitle}
	d.put(PageTitle, title)
	d.put(CartLink, &fakeElement{onClick: func() { title.text = fixture.CartTitle }})

	require.NoError(t, s.NavigateToCart(context.Background()))
}

func TestNavigateToCart_TimesOut(t *testing.T) {
	s, d := startFake(t)
	d.put(PageTitle, &fakeElement{text: fixture.InventoryTitle})
	d.put(CartLink, &fakeElement{})

	start := time.Now()
	err := s.NavigateToCart(context.Background(), wait.WithTimeout(30*time.Millisecond))
	require.Equal(t, errs.Timeout, errs.CodeOf(err))
	require.Contains(t, err.Error(), fixture.CartTitle)
	require.Contains(t, err.Error(), fixture.InventoryTitle, "timeout should report the last observed title")
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	require.Less(t, elapsed, 500*time.Millisecond)
}

func TestAddAndRemove_WaitForButtonSwap(t *testing.T) {
	s, d := startFake(t)
	ctx := context.Background()
	p := fixture.Backpack

	var remove *fakeElement
	remove = &fakeElement{onClick: func() {
		d.remove(RemoveButton(p))
		d.put(AddToCartButton(p), &fakeElement{})
	}}
	d.put(AddToCartButton(p), &fakeElement{onClick: func() {
		d.remove(AddToCartButton(p))
		d.put(RemoveButton(p), remove)
	}})

	require.NoError(t, s.AddToCart(ctx, p))
	require.NoError(t, s.RemoveFromCart(ctx, p))
	require.Equal(t, 1, remove.clicks)

	n, err := s.Count(ctx, RemoveButton(p))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAddToCart_NoSwapTimesOut(t *testing.T) {
	s, d := startFake(t)
	d.put(AddToCartButton(fixture.BikeLight), &fakeElement{})

	err := s.AddToCart(context.Background(), fixture.BikeLight)
	require.Equal(t, errs.Timeout, errs.CodeOf(err))
	require.Contains(t, err.Error(), fixture.BikeLight.Name)
}

func TestCheckoutFlow(t *testing.T) {
	s, d := startFake(t)
	ctx := context.Background()

	first, last, postal := &fakeElement{hidden: true}, &fakeElement{}, &fakeElement{}
	d.put(FirstNameInput, first)
	d.put(LastNameInput, last)
	d.put(PostalCodeInput, postal)
	d.put(CheckoutButton, &fakeElement{onClick: func() { first.hidden = false }})
	title := &fakeElement{text: fixture.CompleteTitle}
	d.put(PageTitle, title)
	d.put(ContinueButton, &fakeElement{onClick: func() {
		d.put(SubtotalLabel, &fakeElement{text: "Item total: $29.99"})
		d.put(FinishButton, &fakeElement{onClick: func() {
			d.put(CompleteHeader, &fakeElement{text: fixture.CompleteHeader})
			d.put(BackHomeButton, &fakeElement{onClick: func() { title.text = fixture.InventoryTitle }})
		}})
	}})

	require.NoError(t, s.BeginCheckout(ctx))
	require.NoError(t, s.SubmitCheckoutInfo(ctx, fixture.Customer))
	require.Equal(t, "John", first.typed)
	require.Equal(t, "Doe", last.typed)
	require.Equal(t, "12345", postal.typed)

	require.NoError(t, s.FinishCheckout(ctx))
	header, err := s.Text(ctx, CompleteHeader)
	require.NoError(t, err)
	require.Equal(t, fixture.CompleteHeader, header)

	require.NoError(t, s.BackHome(ctx))
	got, err := s.Text(ctx, PageTitle)
	require.NoError(t, err)
	require.Equal(t, fixture.InventoryTitle, got)
}

func TestFillCheckoutInfo_SkipsEmptyFields(t *testing.T) {
	s, d := startFake(t)
	first, postal := &fakeElement{}, &fakeElement{}
	d.put(FirstNameInput, first)
	d.put(PostalCodeInput, postal)

	// No last-name element exists; an empty value must not look for it.
	require.NoError(t, s.FillCheckoutInfo(context.Background(), fixture.MissingFieldCases[1].Info))
	require.Equal(t, "John", first.typed)
	require.Equal(t, "12345", postal.typed)
}

func TestCancelCheckout_ReturnsToCart(t *testing.T) {
	s, d := startFake(t)
	title := &fakeElement{text: fixture.CheckoutTitle}
	d.put(PageTitle, title)
	d.put(CancelButton, &fakeElement{onClick: func() { title.text = fixture.CartTitle }})

	require.NoError(t, s.CancelCheckout(context.Background()))
}

func TestContinueShopping_ReturnsToInventory(t *testing.T) {
	s, d := startFake(t)
	title := &fakeElement{text: fixture.CartTitle}
	d.put(PageTitle, title)
	d.put(ContinueShoppingButton, &fakeElement{onClick: func() { title.text = fixture.InventoryTitle }})

	require.NoError(t, s.ContinueShopping(context.Background()))
}

func TestSortBy_WaitsForActiveOption(t *testing.T) {
	for _, opt := range fixture.SortOptions {
		t.Run(opt.Value, func(t *testing.T) {
			s, d := startFake(t)
			active := &fakeElement{text: "Name (A to Z)"}
			sel := &fakeElement{}
			sel.onSelect = func(v string) {
				o, _ := fixture.SortOptionByValue(v)
				active.text = o.Label
			}
			d.put(SortSelect, sel)
			d.put(ActiveSortOption, active)

			require.NoError(t, s.SortBy(context.Background(), opt))
			require.Equal(t, opt.Value, sel.selected)
		})
	}
}

func TestLogout_WaitsForLinkThenLoginButton(t *testing.T) {
	s, d := startFake(t)
	link := &fakeElement{hidden: true}
	link.onClick = func() { d.put(LoginButton, &fakeElement{}) }
	d.put(MenuButton, &fakeElement{onClick: func() { link.hidden = false }})
	d.put(LogoutLink, link)

	require.NoError(t, s.Logout(context.Background()))
	require.Equal(t, 1, link.clicks)
}

func TestLogout_HiddenLinkTimesOut(t *testing.T) {
	s, d := startFake(t)
	d.put(MenuButton, &fakeElement{})
	d.put(LogoutLink, &fakeElement{hidden: true})

	err := s.Logout(context.Background())
	require.Equal(t, errs.Timeout, errs.CodeOf(err))
	require.Contains(t, err.Error(), "logout link was not visible in time")
}
