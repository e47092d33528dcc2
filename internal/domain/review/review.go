// Package review implements product reviews: one per user per product,
// ratings 1 through 5, deletable only by their author. Aggregates
// (average rating, review count) are maintained on the product row by the
// store and only read here.
package review

import (
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrProductNotFound is returned when the reviewed product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
	// ErrNotFound is returned when a review id does not resolve.
	ErrNotFound = errors.New("review not found")
	// ErrRatingOutOfRange is returned for ratings outside 1..5.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	// ErrDuplicate is returned when the caller already reviewed the product.
	ErrDuplicate = errors.New("you have already reviewed this product")
	// ErrForbidden is returned when deleting another user's review.
	ErrForbidden = errors.New("cannot delete another user's review")
)

// Profile is the reviewer name joined into a listed review.
type Profile struct {
	FullName string `json:"full_name"`
}

// Review is one review as listed.
type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	Profile   *Profile  `json:"profiles"`
	// IsMine marks the viewer's own review when the listing is requested
	// with a resolved identity.
	IsMine bool `json:"is_mine"`
}

// Listing is the review page for one product.
type Listing struct {
	ProductID     string   `json:"product_id"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	Reviews       []Review `json:"reviews"`
}
