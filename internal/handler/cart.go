package handler

import (
	"net/http"

	"github.com/savesage/spices-api/internal/domain/cart"
	"github.com/savesage/spices-api/internal/domain/identity"
)

// cartViewDTO flattens decimals to JSON numbers for the response.
type cartViewDTO struct {
	CartID    string        `json:"cart_id"`
	Items     []cartItemDTO `json:"items"`
	Total     float64       `json:"total"`
	ItemCount int           `json:"item_count"`
}

type cartItemDTO struct {
	ID        string          `json:"id"`
	Quantity  int             `json:"quantity"`
	ProductID string          `json:"product_id"`
	Product   *cartProductDTO `json:"products"`
}

type cartProductDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Weight   string  `json:"weight"`
	ImageSrc string  `json:"image_src"`
	Category string  `json:"category"`
}

func toCartViewDTO(v cart.View) cartViewDTO {
	items := make([]cartItemDTO, len(v.Items))
	for i, it := range v.Items {
		items[i] = cartItemDTO{
			ID:        it.ID,
			Quantity:  it.Quantity,
			ProductID: it.ProductID,
		}
		if it.Product != nil {
			items[i].Product = &cartProductDTO{
				ID:       it.Product.ID,
				Name:     it.Product.Name,
				Price:    it.Product.Price.InexactFloat64(),
				Weight:   it.Product.Weight,
				ImageSrc: it.Product.ImageSrc,
				Category: it.Product.Category,
			}
		}
	}
	return cartViewDTO{
		CartID:    v.CartID,
		Items:     items,
		Total:     v.Total.InexactFloat64(),
		ItemCount: v.ItemCount,
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	cartID, err := h.carts.GetOrCreate(r.Context(), id.ID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	view, err := h.carts.View(r.Context(), cartID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartViewDTO(view))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Quantity defaults to one when omitted.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.carts.AddItem(r.Context(), id.ID, req.ProductID, quantity)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartViewDTO(view))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req updateQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.carts.UpdateItem(r.Context(), id.ID, r.PathValue("id"), req.Quantity)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartViewDTO(view))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	view, err := h.carts.RemoveItem(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartViewDTO(view))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	view, err := h.carts.Clear(r.Context(), id.ID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	dto := toCartViewDTO(view)
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Cart cleared",
		"cart_id":    dto.CartID,
		"items":      dto.Items,
		"total":      dto.Total,
		"item_count": dto.ItemCount,
	})
}
