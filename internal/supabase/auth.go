package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/savesage/spices-api/internal/domain/identity"
)

// AuthConfig configures the GoTrue client.
type AuthConfig struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL string
	// AnonKey is the public API key used for auth endpoints.
	AnonKey string
	// Timeout bounds each round trip. Defaults to 10s.
	Timeout time.Duration
}

// Auth talks to the hosted auth provider. It implements both
// identity.Provider (signup, password sign-in) and identity.Authenticator
// (bearer token resolution).
type Auth struct {
	base string
	anon string
	http *http.Client
}

var (
	_ identity.Provider      = (*Auth)(nil)
	_ identity.Authenticator = (*Auth)(nil)
)

// NewAuth creates a GoTrue client with an instrumented transport.
func NewAuth(cfg AuthConfig) *Auth {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Auth{
		base: strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anon: cfg.AnonKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SignUp registers an account. Provider refusals come back as
// *identity.RejectedError with the provider's reason.
func (a *Auth) SignUp(ctx context.Context, email, password, fullName string) (identity.ProviderUser, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"full_name": fullName},
	}

	raw, status, err := a.post(ctx, "/signup", body)
	if err != nil {
		return identity.ProviderUser{}, err
	}
	if status < 200 || status > 299 {
		return identity.ProviderUser{}, &identity.RejectedError{Reason: errorMessage(raw)}
	}

	var u identity.ProviderUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return identity.ProviderUser{}, errors.Wrap(err, "decode signup response")
	}
	if u.ID == "" {
		return identity.ProviderUser{}, &identity.RejectedError{Reason: errorMessage(raw)}
	}
	return u, nil
}

// SignIn exchanges email and password for a session via the password grant.
func (a *Auth) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	body := map[string]any{"email": email, "password": password}

	raw, status, err := a.post(ctx, "/token?grant_type=password", body)
	if err != nil {
		return identity.Session{}, err
	}
	if status < 200 || status > 299 {
		return identity.Session{}, errors.Wrap(identity.ErrInvalidCredentials, errorMessage(raw))
	}

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		User         struct {
			ID           string `json:"id"`
			Email        string `json:"email"`
			UserMetadata struct {
				FullName string `json:"full_name"`
			} `json:"user_metadata"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return identity.Session{}, errors.Wrap(err, "decode token response")
	}
	if resp.AccessToken == "" {
		return identity.Session{}, identity.ErrInvalidCredentials
	}

	return identity.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User: identity.SessionUser{
			ID:       resp.User.ID,
			Email:    resp.User.Email,
			FullName: resp.User.UserMetadata.FullName,
		},
	}, nil
}

// Authenticate resolves a bearer token against the provider's user endpoint.
// The provider checks signature and revocation; any non-OK answer maps to
// identity.ErrUnauthorized.
func (a *Auth) Authenticate(ctx context.Context, token string) (identity.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/user", nil)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", a.anon)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.http.Do(req)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "resolve token")
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return identity.Identity{}, identity.ErrUnauthorized
	}

	var id identity.Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&id); err != nil {
		return identity.Identity{}, errors.Wrap(err, "decode user response")
	}
	if id.ID == "" {
		return identity.Identity{}, identity.ErrUnauthorized
	}
	return id, nil
}

// post sends a JSON body to an auth endpoint and returns the raw response.
// Transport-level failures are returned as errors; HTTP-level refusals are
// left to the caller, which knows the endpoint-specific meaning.
func (a *Auth) post(ctx context.Context, path string, body any) ([]byte, int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, bytes.NewReader(buf))
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", a.anon)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "POST %s", path)
	}
	defer drain(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, errors.Wrapf(err, "read %s response", path)
	}
	return raw, resp.StatusCode, nil
}
