package handler

import (
	"net/http"
	"strings"

	"github.com/savesage/spices-api/internal/domain/identity"
)

// authedHandler is a handler that only runs with a resolved caller identity.
type authedHandler func(w http.ResponseWriter, r *http.Request, id identity.Identity)

// requireAuth resolves the bearer token before running next. Requests
// without a valid token get 401 and never reach the workflow.
func (h *Handler) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r, id)
	}
}

// viewerID resolves the bearer token when present, returning an empty id for
// guests or unverifiable tokens. Used by endpoints that work either way.
func (h *Handler) viewerID(r *http.Request) string {
	token := bearerToken(r)
	if token == "" {
		return ""
	}
	id, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		return ""
	}
	return id.ID
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.identity.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User created. Check your email to confirm your account.",
		"user_id": res.UserID,
		"email":   res.Email,
	})
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) logIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    session.ExpiresIn,
		"user": map[string]any{
			"id":        session.User.ID,
			"email":     session.User.Email,
			"full_name": session.User.FullName,
		},
	})
}

// logOut is a stateless acknowledgment; token invalidation is the client
// discarding it.
func (h *Handler) logOut(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}
