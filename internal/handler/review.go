package handler

import (
	"net/http"

	"github.com/savesage/spices-api/internal/domain/identity"
)

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	// Reviews are public; a resolvable token only adds the is_mine marker.
	listing, err := h.reviews.List(r.Context(), r.PathValue("productID"), h.viewerID(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

type postReviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

func (h *Handler) postReview(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	var req postReviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.reviews.Post(r.Context(), id.ID, r.PathValue("productID"), req.Rating, req.Body)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Review submitted",
		"review":  created,
	})
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request, id identity.Identity) {
	if err := h.reviews.Delete(r.Context(), id.ID, r.PathValue("reviewID")); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Review deleted"})
}
