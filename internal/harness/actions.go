package harness

import (
	"context"
	"fmt"

	"github.com/kuitang/storefront-e2e/internal/fixture"
	"github.com/kuitang/storefront-e2e/internal/wait"
)

// Login fills the login form and submits it. The outcome is left for the
// caller to inspect: the inventory page on success, the error banner on
// failure.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if err := s.Type(ctx, UsernameInput, username); err != nil {
		return err
	}
	if err := s.Type(ctx, PasswordInput, password); err != nil {
		return err
	}
	return s.Click(ctx, LoginButton)
}

// LoginAs logs in with a credential fixture.
func (s *Session) LoginAs(ctx context.Context, c fixture.Credential) error {
	return s.Login(ctx, c.Username, c.Password)
}

// NavigateToCart clicks the cart icon and waits for the cart title.
// The bound defaults to the explicit wait; pass wait.WithTimeout to override.
func (s *Session) NavigateToCart(ctx context.Context, opts ...wait.Option) error {
	if err := s.Click(ctx, CartLink); err != nil {
		return err
	}
	return s.WaitForText(ctx, PageTitle, fixture.CartTitle, opts...)
}

// AddToCart clicks a product's add button and waits for it to turn into a
// remove button.
func (s *Session) AddToCart(ctx context.Context, p fixture.Product) error {
	if err := s.Click(ctx, AddToCartButton(p)); err != nil {
		return err
	}
	if _, err := s.WaitVisible(ctx, RemoveButton(p)); err != nil {
		return fmt.Errorf("add %s to cart: %w", p.Name, err)
	}
	return nil
}

// RemoveFromCart waits for a product's remove button, clicks it and waits
// for it to disappear.
func (s *Session) RemoveFromCart(ctx context.Context, p fixture.Product) error {
	btn, err := s.WaitVisible(ctx, RemoveButton(p))
	if err != nil {
		return fmt.Errorf("remove %s from cart: %w", p.Name, err)
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("click remove %s: %w", p.Name, err)
	}
	if err := s.WaitGone(ctx, RemoveButton(p)); err != nil {
		return fmt.Errorf("remove %s from cart: %w", p.Name, err)
	}
	return nil
}

// ContinueShopping leaves the cart and waits for the inventory title.
func (s *Session) ContinueShopping(ctx context.Context) error {
	return s.clickThrough(ctx, ContinueShoppingButton, PageTitle, fixture.InventoryTitle)
}

// BeginCheckout leaves the cart for the checkout information form.
func (s *Session) BeginCheckout(ctx context.Context) error {
	btn, err := s.WaitClickable(ctx, CheckoutButton)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("click %s: %w", CheckoutButton, err)
	}
	_, err = s.WaitVisible(ctx, FirstNameInput)
	return err
}

// FillCheckoutInfo types the non-empty fields of info.
func (s *Session) FillCheckoutInfo(ctx context.Context, info fixture.CheckoutInfo) error {
	fields := []struct {
		sel   Selector
		value string
	}{
		{FirstNameInput, info.FirstName},
		{LastNameInput, info.LastName},
		{PostalCodeInput, info.PostalCode},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := s.Type(ctx, f.sel, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ContinueCheckout submits the information form. Like Login it does not
// assert the outcome.
func (s *Session) ContinueCheckout(ctx context.Context) error {
	return s.Click(ctx, ContinueButton)
}

// SubmitCheckoutInfo fills the information form, submits it and waits for
// the overview's subtotal.
func (s *Session) SubmitCheckoutInfo(ctx context.Context, info fixture.CheckoutInfo) error {
	if err := s.FillCheckoutInfo(ctx, info); err != nil {
		return err
	}
	if err := s.ContinueCheckout(ctx); err != nil {
		return err
	}
	_, err := s.WaitVisible(ctx, SubtotalLabel)
	return err
}

// FinishCheckout places the order and waits for the confirmation header.
func (s *Session) FinishCheckout(ctx context.Context) error {
	btn, err := s.WaitClickable(ctx, FinishButton)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("click %s: %w", FinishButton, err)
	}
	_, err = s.WaitVisible(ctx, CompleteHeader)
	return err
}

// BackHome leaves the order confirmation for the inventory page.
func (s *Session) BackHome(ctx context.Context) error {
	return s.clickThrough(ctx, BackHomeButton, PageTitle, fixture.InventoryTitle)
}

// CancelCheckout leaves the information form and waits for the cart title.
func (s *Session) CancelCheckout(ctx context.Context) error {
	return s.clickThrough(ctx, CancelButton, PageTitle, fixture.CartTitle)
}

// SortBy picks a sort option and waits for the dropdown label to follow.
func (s *Session) SortBy(ctx context.Context, opt fixture.SortOption) error {
	el, err := s.Find(ctx, SortSelect)
	if err != nil {
		return err
	}
	if err := el.SelectOption(opt.Value); err != nil {
		return fmt.Errorf("select sort option %q: %w", opt.Value, err)
	}
	return s.WaitForText(ctx, ActiveSortOption, opt.Label)
}

// Logout opens the side menu, waits for the logout link and follows it back
// to the login form.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.Click(ctx, MenuButton); err != nil {
		return err
	}
	link, err := s.WaitVisible(ctx, LogoutLink)
	if err != nil {
		return fmt.Errorf("logout link was not visible in time: %w", err)
	}
	if err := link.Click(); err != nil {
		return fmt.Errorf("click %s: %w", LogoutLink, err)
	}
	_, err = s.WaitVisible(ctx, LoginButton)
	return err
}

func (s *Session) clickThrough(ctx context.Context, button, title Selector, want string) error {
	btn, err := s.WaitClickable(ctx, button)
	if err != nil {
		return err
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("click %s: %w", button, err)
	}
	return s.WaitForText(ctx, title, want)
}
