// Package supabase holds the two external collaborators of this service: a
// PostgREST client implementing the store.Store capability and a GoTrue
// client implementing the identity capabilities. Every operation is a single
// bounded HTTP round trip; there are no retries and no client-side caching.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/savesage/spices-api/internal/store"
)

// acceptSingleObject asks PostgREST for exactly-one-or-none semantics.
// Anything but exactly one row comes back as 406.
const acceptSingleObject = "application/vnd.pgrst.object+json"

// UpstreamError is an unexpected response from the hosted store or auth
// provider. It is propagated as a generic failure and never retried here.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// ClientConfig configures the PostgREST client.
type ClientConfig struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// ServiceKey is the privileged API key; row-level security is enforced
	// in the workflows by scoping every call to the caller's own rows.
	ServiceKey string
	// Timeout bounds each round trip. Defaults to 10s.
	Timeout time.Duration
}

// Client talks to the hosted Postgres through its REST interface.
type Client struct {
	rest string
	key  string
	http *http.Client
}

var _ store.Store = (*Client)(nil)

// NewClient creates a PostgREST client with an instrumented transport.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		rest: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		key:  cfg.ServiceKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Ping verifies the REST endpoint is reachable and accepts our key.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rest+"/", nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "ping store")
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Status: resp.StatusCode, Message: "ping failed"}
	}
	return nil
}

func (c *Client) Select(ctx context.Context, entity string, dest any, opts store.SelectOpts) error {
	params := url.Values{}
	cols := opts.Columns
	if cols == "" {
		cols = "*"
	}
	params.Set("select", cols)
	for col, pred := range opts.Filters {
		params.Set(col, pred)
	}
	if opts.Order != "" {
		params.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	return c.do(ctx, request{
		method: http.MethodGet,
		entity: entity,
		params: params,
		single: opts.Single,
	}, dest)
}

func (c *Client) Insert(ctx context.Context, entity string, record any, dest any) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		entity: entity,
		body:   record,
	}, dest)
}

func (c *Client) Update(ctx context.Context, entity string, patch any, filters store.Filters, dest any) error {
	return c.do(ctx, request{
		method: http.MethodPatch,
		entity: entity,
		params: filterParams(filters),
		body:   patch,
	}, dest)
}

func (c *Client) Delete(ctx context.Context, entity string, filters store.Filters, dest any) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		entity: entity,
		params: filterParams(filters),
	}, dest)
}

func (c *Client) Upsert(ctx context.Context, entity string, record any, onConflict string, dest any) error {
	params := url.Values{}
	params.Set("on_conflict", onConflict)
	return c.do(ctx, request{
		method: http.MethodPost,
		entity: entity,
		params: params,
		body:   record,
		prefer: "return=representation,resolution=merge-duplicates",
	}, dest)
}

type request struct {
	method string
	entity string
	params url.Values
	body   any
	prefer string
	single bool
}

func (c *Client) do(ctx context.Context, r request, dest any) error {
	u := c.rest + "/" + r.entity
	if len(r.params) > 0 {
		u += "?" + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return errors.Wrapf(err, "encode %s record", r.entity)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	c.setAuth(req)
	req.Header.Set("Content-Type", "application/json")
	prefer := r.prefer
	if prefer == "" {
		prefer = "return=representation"
	}
	req.Header.Set("Prefer", prefer)
	if r.single {
		req.Header.Set("Accept", acceptSingleObject)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", r.method, r.entity)
	}
	defer drain(resp.Body)

	if r.single && resp.StatusCode == http.StatusNotAcceptable {
		return store.ErrNoRows
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(err, "read %s response", r.entity)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(err, "decode %s response", r.entity)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
}

func filterParams(filters store.Filters) url.Values {
	params := url.Values{}
	for col, pred := range filters {
		params.Set(col, pred)
	}
	return params
}

// drain discards and closes a response body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
