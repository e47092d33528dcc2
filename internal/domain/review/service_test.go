package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savesage/spices-api/internal/store/storetest"
)

func newFixture() (*storetest.Store, *Service) {
	st := storetest.New()
	st.LinkForeign("reviews", "profiles", "user_id")
	st.Seed("products",
		map[string]any{"id": "saffron", "name": "Saffron", "price": 450.0, "rating": 4.6, "review_count": 2},
	)
	st.Seed("profiles",
		map[string]any{"id": "user-1", "full_name": "Asha Rao"},
		map[string]any{"id": "user-2", "full_name": "Vikram Shah"},
	)
	return st, NewService(st)
}

func TestList(t *testing.T) {
	st, svc := newFixture()
	ctx := context.Background()

	st.Seed("reviews",
		map[string]any{"product_id": "saffron", "user_id": "user-1", "rating": 5, "body": "Wonderful aroma"},
		map[string]any{"product_id": "saffron", "user_id": "user-2", "rating": 4, "body": "Pricey but worth it"},
	)

	listing, err := svc.List(ctx, "saffron", "")
	require.NoError(t, err)

	assert.Equal(t, "saffron", listing.ProductID)
	assert.Equal(t, 4.6, listing.AverageRating)
	assert.Equal(t, 2, listing.ReviewCount)
	require.Len(t, listing.Reviews, 2)

	// Newest first: the second seeded row has the later created_at.
	assert.Equal(t, "Pricey but worth it", listing.Reviews[0].Body)
	require.NotNil(t, listing.Reviews[0].Profile)
	assert.Equal(t, "Vikram Shah", listing.Reviews[0].Profile.FullName)
	for _, r := range listing.Reviews {
		assert.False(t, r.IsMine)
	}
}

func TestList_MarksViewersOwnReview(t *testing.T) {
	st, svc := newFixture()

	st.Seed("reviews",
		map[string]any{"product_id": "saffron", "user_id": "user-1", "rating": 5, "body": "Mine"},
		map[string]any{"product_id": "saffron", "user_id": "user-2", "rating": 3, "body": "Theirs"},
	)

	listing, err := svc.List(context.Background(), "saffron", "user-1")
	require.NoError(t, err)

	byBody := map[string]bool{}
	for _, r := range listing.Reviews {
		byBody[r.Body] = r.IsMine
	}
	assert.True(t, byBody["Mine"])
	assert.False(t, byBody["Theirs"])
}

func TestList_UnknownProduct(t *testing.T) {
	_, svc := newFixture()

	_, err := svc.List(context.Background(), "no-such-product", "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPost(t *testing.T) {
	st, svc := newFixture()

	created, err := svc.Post(context.Background(), "user-1", "saffron", 5, "Lovely threads")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 5, created.Rating)
	assert.Equal(t, "Lovely threads", created.Body)
	assert.Len(t, st.Rows("reviews"), 1)
}

func TestPost_RatingBounds(t *testing.T) {
	_, svc := newFixture()
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Post(ctx, "user-1", "saffron", rating, "")
		assert.ErrorIs(t, err, ErrRatingOutOfRange, "rating %d", rating)
	}

	for _, rating := range []int{1, 5} {
		_, svc := newFixture()
		_, err := svc.Post(ctx, "user-1", "saffron", rating, "")
		assert.NoError(t, err, "rating %d", rating)
	}
}

func TestPost_UnknownProduct(t *testing.T) {
	_, svc := newFixture()

	_, err := svc.Post(context.Background(), "user-1", "no-such-product", 4, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPost_DuplicateIsConflict(t *testing.T) {
	_, svc := newFixture()
	ctx := context.Background()

	_, err := svc.Post(ctx, "user-1", "saffron", 4, "First impression")
	require.NoError(t, err)

	_, err = svc.Post(ctx, "user-1", "saffron", 5, "Changed my mind")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDelete_OwnReview(t *testing.T) {
	st, svc := newFixture()
	ctx := context.Background()

	created, err := svc.Post(ctx, "user-1", "saffron", 4, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", created.ID))
	assert.Empty(t, st.Rows("reviews"))
}

func TestDelete_ForeignReviewForbidden(t *testing.T) {
	st, svc := newFixture()
	ctx := context.Background()

	created, err := svc.Post(ctx, "user-2", "saffron", 4, "")
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-1", created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, st.Rows("reviews"), 1)
}

func TestDelete_Unknown(t *testing.T) {
	_, svc := newFixture()

	err := svc.Delete(context.Background(), "user-1", "no-such-review")
	assert.ErrorIs(t, err, ErrNotFound)
}
