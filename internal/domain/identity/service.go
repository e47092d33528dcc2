package identity

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/savesage/spices-api/internal/store"
)

// Service wraps the auth provider with the storefront's account bookkeeping.
type Service struct {
	provider Provider
	store    store.Store
}

// NewService creates an identity Service.
func NewService(provider Provider, st store.Store) *Service {
	return &Service{provider: provider, store: st}
}

// SignUpResult is returned to a newly registered user. The account may still
// require email confirmation before sign-in succeeds.
type SignUpResult struct {
	UserID string
	Email  string
}

// SignUp registers an account with the provider and then writes the profile
// row. The profile write is best-effort: the row can be recreated later, so
// its failure is logged and never aborts an otherwise successful signup.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (SignUpResult, error) {
	u, err := s.provider.SignUp(ctx, email, password, fullName)
	if err != nil {
		return SignUpResult{}, err
	}

	profile := map[string]any{"id": u.ID, "full_name": fullName}
	if err := s.store.Upsert(ctx, "profiles", profile, "id", nil); err != nil {
		zctx.From(ctx).Warn("Profile row not created on signup",
			zap.String("user_id", u.ID), zap.Error(err))
	}

	return SignUpResult{UserID: u.ID, Email: u.Email}, nil
}

// SignIn exchanges credentials for a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	return s.provider.SignIn(ctx, email, password)
}
