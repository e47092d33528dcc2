package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savesage/spices-api/internal/store/storetest"
)

func seedProducts(st *storetest.Store) {
	st.Seed("products",
		map[string]any{"id": "kashmiri-chilli", "name": "Kashmiri Chilli", "price": 100.0, "weight": "250g pack", "category": "spices", "stock_quantity": 20},
		map[string]any{"id": "garam-masala", "name": "Garam Masala", "price": 50.0, "weight": "100g pack", "category": "blends", "stock_quantity": 15},
	)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	st := storetest.New()
	svc := NewService(st)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Len(t, st.Rows("carts"), 1)
}

func TestGetOrCreate_SeparateUsers(t *testing.T) {
	st := storetest.New()
	svc := NewService(st)
	ctx := context.Background()

	a, err := svc.GetOrCreate(ctx, "user-a")
	require.NoError(t, err)
	b, err := svc.GetOrCreate(ctx, "user-b")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestAddItem_NewProduct(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "kashmiri-chilli", view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Kashmiri Chilli", view.Items[0].Product.Name)
	assert.Equal(t, 200.0, view.Total.InexactFloat64())
}

func TestAddItem_MergesQuantities(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Len(t, st.Rows("cart_items"), 1)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)

	_, err := svc.AddItem(context.Background(), "user-1", "no-such-product", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestView_PricesCart(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "user-1", "garam-masala", 1)
	require.NoError(t, err)

	assert.Equal(t, 250.0, view.Total.InexactFloat64())
	assert.Equal(t, 2, view.ItemCount)
}

func TestView_DanglingProductListedButNotPriced(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	cartID, err := svc.GetOrCreate(ctx, "user-1")
	require.NoError(t, err)
	st.Seed("cart_items",
		map[string]any{"cart_id": cartID, "product_id": "kashmiri-chilli", "quantity": 1},
		map[string]any{"cart_id": cartID, "product_id": "discontinued", "quantity": 3},
	)

	view, err := svc.View(ctx, cartID)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	var dangling *Item
	for i := range view.Items {
		if view.Items[i].ProductID == "discontinued" {
			dangling = &view.Items[i]
		}
	}
	require.NotNil(t, dangling)
	assert.Nil(t, dangling.Product)
	assert.Equal(t, 100.0, view.Total.InexactFloat64())
}

func TestUpdateItem_SetsQuantity(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	view, err = svc.UpdateItem(ctx, "user-1", itemID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, view.Items[0].Quantity)
	assert.Equal(t, 700.0, view.Total.InexactFloat64())
}

func TestUpdateItem_ZeroOrNegativeRemoves(t *testing.T) {
	for _, quantity := range []int{0, -5} {
		st := storetest.New()
		seedProducts(st)
		svc := NewService(st)
		ctx := context.Background()

		view, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
		require.NoError(t, err)
		itemID := view.Items[0].ID

		view, err = svc.UpdateItem(ctx, "user-1", itemID, quantity)
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.True(t, view.Total.IsZero())
	}
}

func TestUpdateItem_ForeignItemUntouched(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	other, err := svc.AddItem(ctx, "user-other", "kashmiri-chilli", 2)
	require.NoError(t, err)
	foreignItem := other.Items[0].ID

	view, err := svc.UpdateItem(ctx, "user-1", foreignItem, 9)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	other, err = svc.View(ctx, other.CartID)
	require.NoError(t, err)
	assert.Equal(t, 2, other.Items[0].Quantity)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)

	view, err := svc.RemoveItem(context.Background(), "user-1", "no-such-item")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClear_EmptiesItemsKeepsCart(t *testing.T) {
	st := storetest.New()
	seedProducts(st)
	svc := NewService(st)
	ctx := context.Background()

	added, err := svc.AddItem(ctx, "user-1", "kashmiri-chilli", 2)
	require.NoError(t, err)

	view, err := svc.Clear(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, added.CartID, view.CartID)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())

	assert.Len(t, st.Rows("carts"), 1)
	assert.Empty(t, st.Rows("cart_items"))
}
