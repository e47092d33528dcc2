package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/savesage/spices-api/internal/domain/cart"
	"github.com/savesage/spices-api/internal/store"
)

// CartReader is the slice of the cart workflow this service depends on: the
// priced item listing that becomes the order snapshot.
type CartReader interface {
	View(ctx context.Context, cartID string) (cart.View, error)
}

// Service implements order placement and the caller-scoped order reads.
type Service struct {
	store store.Store
	carts CartReader
}

// NewService creates an order Service.
func NewService(st store.Store, carts CartReader) *Service {
	return &Service{store: st, carts: carts}
}

const (
	listColumns = "*,order_items(*,products(id,name,image_src))"
	getColumns  = "*,order_items(*,products(id,name,price,image_src,weight))"
)

// Create places an order from the caller's cart: snapshot the priced items,
// insert the order with the shipping address as an opaque copy, freeze each
// line's unit price, then empty the cart. The cart row persists for reuse.
//
// The store offers no transaction across these calls. If the line-item
// insert fails, the just-created order row is deleted best-effort so no
// empty order is left behind; an add-to-cart racing between snapshot and
// clear can still be dropped silently. Stock is neither checked nor
// decremented here; fulfillment owns inventory, and concurrent orders can
// oversell.
func (s *Service) Create(ctx context.Context, userID string, shipping Address) (Summary, error) {
	var carts []struct {
		ID string `json:"id"`
	}
	err := s.store.Select(ctx, "carts", &carts, store.SelectOpts{
		Columns: "id",
		Filters: store.Filters{"user_id": store.Eq(userID)},
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "look up cart")
	}
	if len(carts) == 0 {
		return Summary{}, ErrNoCart
	}
	cartID := carts[0].ID

	view, err := s.carts.View(ctx, cartID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "snapshot cart")
	}
	if len(view.Items) == 0 {
		return Summary{}, ErrEmptyCart
	}

	var created []struct {
		ID string `json:"id"`
	}
	record := map[string]any{
		"user_id":          userID,
		"total_amount":     view.Total,
		"shipping_address": shipping,
		"status":           StatusPending,
	}
	if err := s.store.Insert(ctx, "orders", record, &created); err != nil {
		return Summary{}, errors.Wrap(err, "insert order")
	}
	if len(created) == 0 {
		return Summary{}, errors.New("insert order: store returned no row")
	}
	orderID := created[0].ID

	lines := make([]map[string]any, 0, len(view.Items))
	for _, it := range view.Items {
		if it.Product == nil {
			// The product vanished between add and checkout; the view
			// already excluded it from the total, so it is left out of the
			// order as well.
			continue
		}
		lines = append(lines, map[string]any{
			"order_id":   orderID,
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.Product.Price,
		})
	}
	if err := s.store.Insert(ctx, "order_items", lines, nil); err != nil {
		// Compensate: drop the header row so no empty order survives. The
		// cart is untouched and the caller can retry.
		filters := store.Filters{"id": store.Eq(orderID)}
		if derr := s.store.Delete(ctx, "orders", filters, nil); derr != nil {
			zctx.From(ctx).Error("Orphan order row left after failed item insert",
				zap.String("order_id", orderID), zap.Error(derr))
		}
		return Summary{}, errors.Wrap(err, "insert order items")
	}

	filters := store.Filters{"cart_id": store.Eq(cartID)}
	if err := s.store.Delete(ctx, "cart_items", filters, nil); err != nil {
		return Summary{}, errors.Wrap(err, "clear cart")
	}

	return Summary{
		OrderID:     orderID,
		TotalAmount: view.Total,
		Status:      StatusPending,
	}, nil
}

// List returns the caller's orders, newest first, with their lines embedded.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	orders := make([]Order, 0)
	err := s.store.Select(ctx, "orders", &orders, store.SelectOpts{
		Columns: listColumns,
		Filters: store.Filters{"user_id": store.Eq(userID)},
		Order:   "created_at.desc",
	})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns one of the caller's orders. A foreign order id answers exactly
// like a nonexistent one, so order ids cannot be probed.
func (s *Service) Get(ctx context.Context, userID, orderID string) (Order, error) {
	var o Order
	err := s.store.Select(ctx, "orders", &o, store.SelectOpts{
		Columns: getColumns,
		Filters: store.Filters{
			"id":      store.Eq(orderID),
			"user_id": store.Eq(userID),
		},
		Single: true,
	})
	if errors.Is(err, store.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, errors.Wrap(err, "get order")
	}
	return o, nil
}
