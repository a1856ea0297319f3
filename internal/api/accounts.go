package api

import (
	"errors"
	"net/http"

	"github.com/bookshelfd/bookshelf/internal/auth"
	"github.com/bookshelfd/bookshelf/internal/log"
)

// accountHandler serves registration and login.
type accountHandler struct {
	auth     *auth.Service
	sessions *sessionCodec
	logger   log.Logger
}

// credentialsRequest is the request body for register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /api/v1/auth/register.
func (h *accountHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
		default:
			h.logger.Error("registering user", "error", err)
			writeError(w, http.StatusInternalServerError, "register_failed", "failed to register")
		}
		return
	}

	if err := h.sessions.SetUserCookie(w, userID); err != nil {
		h.logger.Error("issuing session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "session_failed", "failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": userID})
}

// login handles POST /api/v1/auth/login. Failures are uniform regardless
// of whether the account exists.
func (h *accountHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	if err := h.sessions.SetUserCookie(w, user.ID); err != nil {
		h.logger.Error("issuing session cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "session_failed", "failed to start session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email})
}

// logout handles POST /api/v1/auth/logout.
func (h *accountHandler) logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.ClearUserCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
