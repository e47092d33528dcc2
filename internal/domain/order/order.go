// Package order turns a cart into an immutable order record. Prices and the
// shipping address are snapshotted at placement time and never follow later
// catalog or profile edits.
package order

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// StatusPending is the only status this service ever writes. Later
// transitions happen outside of it.
const StatusPending = "pending"

var (
	// ErrNoCart means the caller has never had a cart.
	ErrNoCart = errors.New("cart not found or empty")
	// ErrEmptyCart means the cart exists but holds no items.
	ErrEmptyCart = errors.New("cannot create order from an empty cart")
	// ErrNotFound covers both a nonexistent order id and an order owned by
	// another user; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("order not found")
)

// Address is the shipping destination captured with an order.
type Address struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// Summary is returned to the caller right after placement.
type Summary struct {
	OrderID     string
	TotalAmount decimal.Decimal
	Status      string
}

// ItemProduct is the catalog reference embedded in a listed order item.
type ItemProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageSrc string          `json:"image_src"`
	Weight   string          `json:"weight"`
}

// Item is one line of a placed order. UnitPrice is the price frozen at
// placement; Product reflects the live catalog row and may be nil.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Product   *ItemProduct    `json:"products"`
}

// Order is a placed order as read back from the store. ShippingAddress stays
// an opaque snapshot; it is returned as stored, never re-normalized.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []Item          `json:"order_items"`
}
