package handler

import (
	"net/http"

	"github.com/savesage/spices-api/internal/domain/catalog"
)

type productDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Weight        string  `json:"weight"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	ImageSrc      string  `json:"image_src"`
	Category      string  `json:"category"`
	IsBestseller  bool    `json:"is_bestseller"`
	IsNew         bool    `json:"is_new"`
	StockQuantity int     `json:"stock_quantity"`
}

func toProductDTO(p catalog.Product) productDTO {
	return productDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		Weight:        p.Weight,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		ImageSrc:      p.ImageSrc,
		Category:      p.Category,
		IsBestseller:  p.IsBestseller,
		IsNew:         p.IsNew,
		StockQuantity: p.StockQuantity,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
	}

	products, err := h.catalog.List(r.Context(), q)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	dtos := make([]productDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"products": dtos,
		"count":    len(dtos),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTO(p))
}
