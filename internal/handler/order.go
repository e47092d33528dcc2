package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/savesage/spices-api/internal/domain/identity"
	"github.com/savesage/spices-api/internal/domain/order"
)

type orderDTO struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	TotalAmount     float64         `json:"total_amount"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []orderItemDTO  `json:"order_items"`
}

type orderItemDTO struct {
	ID        string               `json:"id"`
	OrderID   string               `json:"order_id"`
	ProductID string               `json:"product_id"`
	Quantity  int                  `json:"quantity"`
	UnitPrice float64              `json:"unit_price"`
	Product   *orderItemProductDTO `json:"products"`
}

type orderItemProductDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price,omitempty"`
	ImageSrc string  `json:"image_src"`
	Weight   string  `json:"weight,omitempty"`
}

func toOrderDTO(o order.Order) orderDTO {
	items := make([]orderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDTO{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		}
		if it.Product != nil {
			items[i].Product = &orderItemProductDTO{
				ID:       it.Product.ID,
				Name:     it.Product.Name,
				Price:    it.Product.Price.InexactFloat64(),
				ImageSrc: it.Product.ImageSrc,
				Weight:   it.Product.Weight,
			}
		}
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}

type createOrderRequest struct {
	ShippingAddress order.Address `json:"shipping_address"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.orders.Create(r.Context(), id.ID, req.ShippingAddress)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":      "Order placed successfully",
		"order_id":     summary.OrderID,
		"total_amount": summary.TotalAmount.InexactFloat64(),
		"status":       summary.Status,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	orders, err := h.orders.List(r.Context(), id.ID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	dtos := make([]orderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": dtos})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	o, err := h.orders.Get(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(o))
}
