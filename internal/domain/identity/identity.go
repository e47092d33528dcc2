// Package identity delegates authentication to the hosted auth provider.
// The service never sees passwords beyond forwarding them and keeps no
// session state; a bearer token is resolved to an Identity on every request.
package identity

import (
	"context"

	"github.com/go-faster/errors"
)

// Identity is a resolved caller: the subject id used for ownership scoping
// plus the account email.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ErrUnauthorized is returned when a bearer token is missing, invalid, or
// expired. It is never retried locally.
var ErrUnauthorized = errors.New("invalid or expired token")

// ErrInvalidCredentials is returned for failed password sign-ins.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RejectedError carries the provider's reason for refusing a signup
// (weak password, duplicate email, ...). Surfaced to the client verbatim.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// Authenticator resolves a bearer token to an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// ProviderUser is the account record the provider returns on signup.
type ProviderUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionUser is the account summary embedded in a sign-in response.
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Session is an issued token pair.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         SessionUser `json:"user"`
}

// Provider is the account-management capability of the auth provider.
type Provider interface {
	SignUp(ctx context.Context, email, password, fullName string) (ProviderUser, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
}
