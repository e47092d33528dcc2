package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savesage/spices-api/internal/domain/cart"
	"github.com/savesage/spices-api/internal/store"
	"github.com/savesage/spices-api/internal/store/storetest"
)

var testAddress = Address{
	FullName:     "Asha Rao",
	Phone:        "9876543210",
	AddressLine1: "12 Spice Market Road",
	City:         "Kochi",
	State:        "Kerala",
	Pincode:      "682001",
}

func newFixture(t *testing.T) (*storetest.Store, *Service, *cart.Service) {
	t.Helper()
	st := storetest.New()
	st.Seed("products",
		map[string]any{"id": "kashmiri-chilli", "name": "Kashmiri Chilli", "price": 100.0, "weight": "250g pack", "stock_quantity": 20},
		map[string]any{"id": "garam-masala", "name": "Garam Masala", "price": 50.0, "weight": "100g pack", "stock_quantity": 15},
	)
	carts := cart.NewService(st)
	return st, NewService(st, carts), carts
}

func TestCreate_NoCart(t *testing.T) {
	_, svc, _ := newFixture(t)

	_, err := svc.Create(context.Background(), "user-1", testAddress)
	assert.ErrorIs(t, err, ErrNoCart)
}

func TestCreate_EmptyCart(t *testing.T) {
	_, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user-1", testAddress)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreate_SnapshotsCart(t *testing.T) {
	st, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
	require.NoError(t, err)
	view, err := carts.AddItem(ctx, "user-1", "garam-masala", 1)
	require.NoError(t, err)

	summary, err := svc.Create(ctx, "user-1", testAddress)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.OrderID)
	assert.Equal(t, StatusPending, summary.Status)
	assert.True(t, summary.TotalAmount.Equal(view.Total), "order total must equal the pre-order cart total")
	assert.Equal(t, 250.0, summary.TotalAmount.InexactFloat64())

	// The cart is emptied but its row persists for reuse.
	assert.Empty(t, st.Rows("cart_items"))
	assert.Len(t, st.Rows("carts"), 1)
	assert.Len(t, st.Rows("order_items"), 2)
}

func TestCreate_FreezesUnitPrices(t *testing.T) {
	st, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
	require.NoError(t, err)

	summary, err := svc.Create(ctx, "user-1", testAddress)
	require.NoError(t, err)

	// A later catalog price change must not leak into the placed order.
	err = st.Update(ctx, "products", map[string]any{"price": 999.0},
		store.Filters{"id": store.Eq("kashmiri-chilli")}, nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1", summary.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 100.0, got.Items[0].UnitPrice.InexactFloat64())
	assert.Equal(t, 100.0, got.TotalAmount.InexactFloat64())
}

func TestCreate_ShippingAddressStoredOpaque(t *testing.T) {
	_, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
	require.NoError(t, err)

	summary, err := svc.Create(ctx, "user-1", testAddress)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1", summary.OrderID)
	require.NoError(t, err)
	assert.Contains(t, string(got.ShippingAddress), "12 Spice Market Road")
	assert.Contains(t, string(got.ShippingAddress), "682001")
}

func TestCreate_DanglingItemExcluded(t *testing.T) {
	st, svc, carts := newFixture(t)
	ctx := context.Background()

	view, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
	require.NoError(t, err)
	st.Seed("cart_items", map[string]any{
		"cart_id": view.CartID, "product_id": "discontinued", "quantity": 4,
	})

	summary, err := svc.Create(ctx, "user-1", testAddress)
	require.NoError(t, err)

	assert.Equal(t, 100.0, summary.TotalAmount.InexactFloat64())
	assert.Len(t, st.Rows("order_items"), 1)
}

func TestCreate_CompensatesFailedLineInsert(t *testing.T) {
	st, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	st.Fail = func(op, entity string) error {
		if op == "insert" && entity == "order_items" {
			return boom
		}
		return nil
	}

	_, err = svc.Create(ctx, "user-1", testAddress)
	require.ErrorIs(t, err, boom)

	// The header row is rolled back and the cart is untouched.
	assert.Empty(t, st.Rows("orders"))
	assert.Len(t, st.Rows("cart_items"), 1)
}

func TestList_NewestFirstOwnOnly(t *testing.T) {
	_, svc, carts := newFixture(t)
	ctx := context.Background()

	for range 2 {
		_, err := carts.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "user-1", testAddress)
		require.NoError(t, err)
	}
	_, err := carts.AddItem(ctx, "user-2", "garam-masala", 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", testAddress)
	require.NoError(t, err)

	orders, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.False(t, orders[0].CreatedAt.Before(orders[1].CreatedAt))
	for _, o := range orders {
		assert.Equal(t, "user-1", o.UserID)
		assert.Len(t, o.Items, 1)
	}
}

func TestGet_ForeignOrderIndistinguishable(t *testing.T) {
	_, svc, carts := newFixture(t)
	ctx := context.Background()

	_, err := carts.AddItem(ctx, "owner", "kashmiri-chilli", 1)
	require.NoError(t, err)
	summary, err := svc.Create(ctx, "owner", testAddress)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "prober", summary.OrderID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "prober", "no-such-order")
	assert.ErrorIs(t, err, ErrNotFound)
}
