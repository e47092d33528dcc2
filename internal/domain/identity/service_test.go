package identity

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savesage/spices-api/internal/store/storetest"
)

// fakeProvider is an in-memory Provider for wiring tests.
type fakeProvider struct {
	signUpErr error
	signInErr error
}

func (f *fakeProvider) SignUp(_ context.Context, email, _, _ string) (ProviderUser, error) {
	if f.signUpErr != nil {
		return ProviderUser{}, f.signUpErr
	}
	return ProviderUser{ID: "user-new", Email: email}, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (Session, error) {
	if f.signInErr != nil {
		return Session{}, f.signInErr
	}
	return Session{
		AccessToken: "token",
		TokenType:   "bearer",
		User:        SessionUser{ID: "user-new", Email: email},
	}, nil
}

func TestSignUp_CreatesProfile(t *testing.T) {
	st := storetest.New()
	svc := NewService(&fakeProvider{}, st)

	res, err := svc.SignUp(context.Background(), "asha@example.com", "secret123", "Asha Rao")
	require.NoError(t, err)

	assert.Equal(t, "user-new", res.UserID)
	assert.Equal(t, "asha@example.com", res.Email)

	rows := st.Rows("profiles")
	require.Len(t, rows, 1)
	assert.Equal(t, "user-new", rows[0]["id"])
	assert.Equal(t, "Asha Rao", rows[0]["full_name"])
}

func TestSignUp_ProfileFailureDoesNotAbort(t *testing.T) {
	st := storetest.New()
	st.Fail = func(op, entity string) error {
		if entity == "profiles" {
			return errors.New("profiles table unavailable")
		}
		return nil
	}
	svc := NewService(&fakeProvider{}, st)

	res, err := svc.SignUp(context.Background(), "asha@example.com", "secret123", "Asha Rao")
	require.NoError(t, err)
	assert.Equal(t, "user-new", res.UserID)
	assert.Empty(t, st.Rows("profiles"))
}

func TestSignUp_ProviderRejection(t *testing.T) {
	st := storetest.New()
	rejected := &RejectedError{Reason: "password too weak"}
	svc := NewService(&fakeProvider{signUpErr: rejected}, st)

	_, err := svc.SignUp(context.Background(), "asha@example.com", "x", "")
	require.Error(t, err)

	var re *RejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "password too weak", re.Reason)
	assert.Empty(t, st.Rows("profiles"))
}

func TestSignIn(t *testing.T) {
	svc := NewService(&fakeProvider{}, storetest.New())

	session, err := svc.SignIn(context.Background(), "asha@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "token", session.AccessToken)

	svc = NewService(&fakeProvider{signInErr: ErrInvalidCredentials}, storetest.New())
	_, err = svc.SignIn(context.Background(), "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
