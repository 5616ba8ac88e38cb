package browser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kuitang/storefront-e2e/internal/assertion"
	"github.com/kuitang/storefront-e2e/internal/fixture"
	"github.com/kuitang/storefront-e2e/internal/harness"
)

// =============================================================================
// Cart
// =============================================================================

func TestBrowser_Cart_AddSingleProduct(t *testing.T) {
	s := StartSession(t)
	ctx := t.Context()
	LoginStandard(t, s)

	require.NoError(t, s.AddToCart(ctx, fixture.Backpack))

	badge, err := s.Text(ctx, harness.CartBadge)
	require.NoError(t, err)
	require.NoError(t, assertion.Equal("cart badge", "1", badge))

	require.NoError(t, s.NavigateToCart(ctx))
	require.NoError(t, assertion.SequenceEquals("cart", []string{fixture.Backpack.Name}, CartNames(t, s)))

	prices, err := s.Texts(ctx, harness.CartItemPrice)
	require.NoError(t, err)
	require.NoError(t, assertion.SequenceEquals("cart prices", []string{fixture.Backpack.Price()}, prices))
}

func TestBrowser_Cart_AddMultipleProducts(t *testing.T) {
	s := StartSession(t)
	ctx := t.Context()
	LoginStandard(t, s)

	products := []fixture.Product{fixture.Backpack, fixture.BikeLight, fixture.BoltTShirt}
	for _, p := range products {
		require.NoError(t, s.AddToCart(ctx, p))
	}

	require.NoError(t, s.NavigateToCart(ctx))
	count, err := s.Count(ctx, harness.CartItem)
	require.NoError(t, err)
	require.NoError(t, assertion.CountEquals("cart items", len(products), count))
}

func TestBrowser_Cart_RemoveProducts(t *testing.T) {
	s := StartSession(t)
	ctx := t.Context()
	LoginStandard(t, s)

	require.NoError(t, s.AddToCart(ctx, fixture.Backpack))
	require.NoError(t, s.AddToCart(ctx, fixture.BikeLight))
	require.NoError(t, s.NavigateToCart(ctx))

	require.NoError(t, s.RemoveFromCart(ctx, fixture.Backpack))
	require.NoError(t, assertion.SequenceEquals("cart", []string{fixture.BikeLight.Name}, CartNames(t, s)))

	require.NoError(t, s.RemoveFromCart(ctx, fixture.BikeLight))
	count, err := s.Count(ctx, harness.CartItem)
	require.NoError(t, err)
	require.NoError(t, assertion.CountEquals("cart items", 0, count))

	badges, err := s.Count(ctx, harness.CartBadge)
	require.NoError(t, err)
	require.NoError(t, assertion.CountEquals("cart badge", 0, badges))
}

func TestBrowser_Cart_ContinueShopping(t *testing.T) {
	s := StartSession(t)
	ctx := t.Context()
	LoginStandard(t, s)

	require.NoError(t, s.NavigateToCart(ctx))
	require.NoError(t, s.ContinueShopping(ctx))

	url, err := s.CurrentURL(ctx)
	require.NoError(t, err)
	require.NoError(t, assertion.Contains("url", url, "inventory"))
}
