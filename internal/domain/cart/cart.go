// Package cart owns the per-user shopping cart: lazy creation, item
// arithmetic, and the priced view the frontend renders.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when an item references a product id that
// does not resolve in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Product is the catalog snapshot embedded in a cart item view.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Weight   string          `json:"weight"`
	ImageSrc string          `json:"image_src"`
	Category string          `json:"category"`
}

// Item is one line of a cart. Product is nil when the referenced product has
// been removed from the catalog; such items stay listed but do not count
// toward the total.
type Item struct {
	ID        string   `json:"id"`
	Quantity  int      `json:"quantity"`
	ProductID string   `json:"product_id"`
	Product   *Product `json:"products"`
}

// View is the priced cart as returned by every cart operation.
type View struct {
	CartID    string          `json:"cart_id"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// itemColumns is the projection for cart item reads, embedding the catalog
// snapshot the view needs.
const itemColumns = "id,quantity,product_id,products(id,name,price,weight,image_src,category)"
