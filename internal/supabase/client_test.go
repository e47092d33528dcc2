package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savesage/spices-api/internal/store"
)

// capture records the last request the test server saw.
type capture struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *capture) {
	t.Helper()
	rec := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = json.Marshal(decodeAny(r))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{URL: srv.URL, ServiceKey: "service-key"}), rec
}

func decodeAny(r *http.Request) any {
	var v any
	_ = json.NewDecoder(r.Body).Decode(&v)
	return v
}

func TestSelect_BuildsPostgRESTQuery(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"turmeric"}]`))
	})

	var rows []struct {
		ID string `json:"id"`
	}
	err := client.Select(context.Background(), "products", &rows, store.SelectOpts{
		Columns: "id,name",
		Filters: store.Filters{"category": store.Eq("spices")},
		Order:   "created_at.desc",
		Limit:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/rest/v1/products", rec.path)
	assert.Contains(t, rec.query, "select=id%2Cname")
	assert.Contains(t, rec.query, "category=eq.spices")
	assert.Contains(t, rec.query, "order=created_at.desc")
	assert.Contains(t, rec.query, "limit=10")

	assert.Equal(t, "service-key", rec.header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", rec.header.Get("Authorization"))
	assert.Equal(t, "return=representation", rec.header.Get("Prefer"))

	require.Len(t, rows, 1)
	assert.Equal(t, "turmeric", rows[0].ID)
}

func TestSelect_SingleUses406ForNoRows(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
	})

	var row struct{}
	err := client.Select(context.Background(), "products", &row, store.SelectOpts{
		Filters: store.Filters{"id": store.Eq("missing")},
		Single:  true,
	})
	assert.ErrorIs(t, err, store.ErrNoRows)
	assert.Equal(t, acceptSingleObject, rec.header.Get("Accept"))
}

func TestInsert_PostsRecord(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"item-1"}]`))
	})

	var created []struct {
		ID string `json:"id"`
	}
	err := client.Insert(context.Background(), "cart_items", map[string]any{
		"cart_id": "cart-1", "product_id": "turmeric", "quantity": 2,
	}, &created)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/rest/v1/cart_items", rec.path)
	assert.Contains(t, string(rec.body), `"quantity":2`)
	require.Len(t, created, 1)
	assert.Equal(t, "item-1", created[0].ID)
}

func TestUpdate_PatchesFilteredRows(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	err := client.Update(context.Background(), "cart_items",
		map[string]any{"quantity": 5},
		store.Filters{"id": store.Eq("item-1"), "cart_id": store.Eq("cart-1")},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Contains(t, rec.query, "id=eq.item-1")
	assert.Contains(t, rec.query, "cart_id=eq.cart-1")
}

func TestDelete_FiltersRows(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	err := client.Delete(context.Background(), "cart_items",
		store.Filters{"cart_id": store.Eq("cart-1")}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Contains(t, rec.query, "cart_id=eq.cart-1")
}

func TestUpsert_SetsConflictResolution(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"cart-1"}]`))
	})

	var rows []struct {
		ID string `json:"id"`
	}
	err := client.Upsert(context.Background(), "carts",
		map[string]any{"user_id": "user-1"}, "user_id", &rows)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Contains(t, rec.query, "on_conflict=user_id")
	assert.Equal(t, "return=representation,resolution=merge-duplicates", rec.header.Get("Prefer"))
	require.Len(t, rows, 1)
}

func TestDo_NonSuccessIsUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"database is resting"}`))
	})

	err := client.Select(context.Background(), "products", &[]struct{}{}, store.SelectOpts{})
	require.Error(t, err)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.Status)
	assert.Equal(t, "database is resting", upstream.Message)
}

func TestPing(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "/rest/v1/", rec.path)

	down, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := down.Ping(context.Background())
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}
