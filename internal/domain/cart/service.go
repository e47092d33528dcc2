package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/savesage/spices-api/internal/store"
)

// Service implements the cart workflow on top of the data-access capability.
// It holds no state of its own; every operation is a fresh set of store calls.
type Service struct {
	store store.Store
}

// NewService creates a cart Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type idRow struct {
	ID string `json:"id"`
}

// GetOrCreate returns the caller's cart id, creating the cart on first
// access. The common case is a single read; on a miss the insert goes
// through the store's conflict-merging upsert keyed on user_id, so two
// concurrent first-time requests converge on the same row instead of racing
// a check-then-insert.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (string, error) {
	var rows []idRow
	err := s.store.Select(ctx, "carts", &rows, store.SelectOpts{
		Columns: "id",
		Filters: store.Filters{"user_id": store.Eq(userID)},
	})
	if err != nil {
		return "", errors.Wrap(err, "look up cart")
	}
	if len(rows) > 0 {
		return rows[0].ID, nil
	}

	var created []idRow
	err = s.store.Upsert(ctx, "carts", map[string]any{"user_id": userID}, "user_id", &created)
	if err != nil {
		return "", errors.Wrap(err, "create cart")
	}
	if len(created) == 0 {
		return "", errors.New("create cart: store returned no row")
	}
	return created[0].ID, nil
}

// View loads the cart's items joined with their catalog snapshot and prices
// the cart. Items whose product no longer resolves stay in the list but are
// excluded from the total: a dangling reference must never fail the view.
func (s *Service) View(ctx context.Context, cartID string) (View, error) {
	items := make([]Item, 0)
	err := s.store.Select(ctx, "cart_items", &items, store.SelectOpts{
		Columns: itemColumns,
		Filters: store.Filters{"cart_id": store.Eq(cartID)},
	})
	if err != nil {
		return View{}, errors.Wrap(err, "load cart items")
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return View{
		CartID:    cartID,
		Items:     items,
		Total:     total.Round(2),
		ItemCount: len(items),
	}, nil
}

// AddItem puts quantity units of a product into the caller's cart. When the
// product is already in the cart the quantities are summed; there is exactly
// one cart item per product. Availability is not checked at add time.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (View, error) {
	cartID, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	var products []idRow
	err = s.store.Select(ctx, "products", &products, store.SelectOpts{
		Columns: "id,stock_quantity",
		Filters: store.Filters{"id": store.Eq(productID)},
	})
	if err != nil {
		return View{}, errors.Wrap(err, "look up product")
	}
	if len(products) == 0 {
		return View{}, ErrProductNotFound
	}

	var existing []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	err = s.store.Select(ctx, "cart_items", &existing, store.SelectOpts{
		Columns: "id,quantity",
		Filters: store.Filters{
			"cart_id":    store.Eq(cartID),
			"product_id": store.Eq(productID),
		},
	})
	if err != nil {
		return View{}, errors.Wrap(err, "look up cart item")
	}

	if len(existing) > 0 {
		patch := map[string]any{"quantity": existing[0].Quantity + quantity}
		filters := store.Filters{"id": store.Eq(existing[0].ID)}
		if err := s.store.Update(ctx, "cart_items", patch, filters, nil); err != nil {
			return View{}, errors.Wrap(err, "increment cart item")
		}
	} else {
		record := map[string]any{
			"cart_id":    cartID,
			"product_id": productID,
			"quantity":   quantity,
		}
		if err := s.store.Insert(ctx, "cart_items", record, nil); err != nil {
			return View{}, errors.Wrap(err, "insert cart item")
		}
	}

	return s.View(ctx, cartID)
}

// UpdateItem sets an item's quantity. Zero or negative removes the item.
// The mutation is filtered by both item id and the caller's cart id, so an
// item in another user's cart is silently untouched.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (View, error) {
	cartID, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	filters := store.Filters{
		"id":      store.Eq(itemID),
		"cart_id": store.Eq(cartID),
	}
	if quantity <= 0 {
		if err := s.store.Delete(ctx, "cart_items", filters, nil); err != nil {
			return View{}, errors.Wrap(err, "remove cart item")
		}
	} else {
		patch := map[string]any{"quantity": quantity}
		if err := s.store.Update(ctx, "cart_items", patch, filters, nil); err != nil {
			return View{}, errors.Wrap(err, "update cart item")
		}
	}

	return s.View(ctx, cartID)
}

// RemoveItem deletes an item from the caller's cart. Removing an absent or
// foreign item is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (View, error) {
	cartID, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	filters := store.Filters{
		"id":      store.Eq(itemID),
		"cart_id": store.Eq(cartID),
	}
	if err := s.store.Delete(ctx, "cart_items", filters, nil); err != nil {
		return View{}, errors.Wrap(err, "remove cart item")
	}

	return s.View(ctx, cartID)
}

// Clear deletes every item in the caller's cart. The cart row itself
// persists for reuse.
func (s *Service) Clear(ctx context.Context, userID string) (View, error) {
	cartID, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return View{}, err
	}

	filters := store.Filters{"cart_id": store.Eq(cartID)}
	if err := s.store.Delete(ctx, "cart_items", filters, nil); err != nil {
		return View{}, errors.Wrap(err, "clear cart")
	}

	return View{
		CartID: cartID,
		Items:  []Item{},
		Total:  decimal.Zero,
	}, nil
}
