package handlers

import (
	"errors"
	"net/http"

	"github.com/atelierhq/atelier/internal/services"
	"github.com/atelierhq/atelier/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Login authenticates the shop administrator, sets the session cookie and
// returns a bearer token for API clients.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthInvalidCredentials) {
			h.respondError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.respondServiceError(w, r, err)
		return
	}

	_, err = h.sessionManager.CreateSession(r.Context(), w, &session.Data{
		AdminID: result.AdminID,
		Email:   result.Email,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, loginResponse{
		Email: result.Email,
		Token: result.Token,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.DestroySession(r.Context(), w, r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}
