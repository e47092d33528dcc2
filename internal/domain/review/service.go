package review

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/savesage/spices-api/internal/store"
)

// Service implements the review workflow.
type Service struct {
	store store.Store
}

// NewService creates a review Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns a product's reviews, newest first, with the product's
// aggregate rating. viewerID, when non-empty, marks the viewer's own review.
func (s *Service) List(ctx context.Context, productID, viewerID string) (Listing, error) {
	var product struct {
		ID          string  `json:"id"`
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"review_count"`
	}
	err := s.store.Select(ctx, "products", &product, store.SelectOpts{
		Columns: "id,rating,review_count",
		Filters: store.Filters{"id": store.Eq(productID)},
		Single:  true,
	})
	if errors.Is(err, store.ErrNoRows) {
		return Listing{}, ErrProductNotFound
	}
	if err != nil {
		return Listing{}, errors.Wrap(err, "look up product")
	}

	reviews := make([]Review, 0)
	err = s.store.Select(ctx, "reviews", &reviews, store.SelectOpts{
		Columns: "id,rating,body,created_at,user_id,profiles(full_name)",
		Filters: store.Filters{"product_id": store.Eq(productID)},
		Order:   "created_at.desc",
	})
	if err != nil {
		return Listing{}, errors.Wrap(err, "list reviews")
	}

	if viewerID != "" {
		for i := range reviews {
			reviews[i].IsMine = reviews[i].UserID == viewerID
		}
	}

	return Listing{
		ProductID:     productID,
		AverageRating: product.Rating,
		ReviewCount:   product.ReviewCount,
		Reviews:       reviews,
	}, nil
}

// Post creates the caller's review of a product. A second review of the
// same product by the same user is a conflict, not an update.
func (s *Service) Post(ctx context.Context, userID, productID string, rating int, body string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrRatingOutOfRange
	}

	var products []struct {
		ID string `json:"id"`
	}
	err := s.store.Select(ctx, "products", &products, store.SelectOpts{
		Columns: "id",
		Filters: store.Filters{"id": store.Eq(productID)},
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "look up product")
	}
	if len(products) == 0 {
		return Review{}, ErrProductNotFound
	}

	var existing []struct {
		ID string `json:"id"`
	}
	err = s.store.Select(ctx, "reviews", &existing, store.SelectOpts{
		Columns: "id",
		Filters: store.Filters{
			"product_id": store.Eq(productID),
			"user_id":    store.Eq(userID),
		},
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "look up existing review")
	}
	if len(existing) > 0 {
		return Review{}, ErrDuplicate
	}

	record := map[string]any{
		"product_id": productID,
		"user_id":    userID,
		"rating":     rating,
		"body":       body,
	}
	var inserted []Review
	if err := s.store.Insert(ctx, "reviews", record, &inserted); err != nil {
		return Review{}, errors.Wrap(err, "insert review")
	}
	if len(inserted) == 0 {
		return Review{}, errors.New("insert review: store returned no row")
	}
	return inserted[0], nil
}

// Delete removes the caller's own review.
func (s *Service) Delete(ctx context.Context, userID, reviewID string) error {
	var rows []struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	err := s.store.Select(ctx, "reviews", &rows, store.SelectOpts{
		Columns: "id,user_id",
		Filters: store.Filters{"id": store.Eq(reviewID)},
	})
	if err != nil {
		return errors.Wrap(err, "look up review")
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	if rows[0].UserID != userID {
		return ErrForbidden
	}

	filters := store.Filters{"id": store.Eq(reviewID)}
	if err := s.store.Delete(ctx, "reviews", filters, nil); err != nil {
		return errors.Wrap(err, "delete review")
	}
	return nil
}
