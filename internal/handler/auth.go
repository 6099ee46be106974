package handler

import (
	"net/http"

	"github.com/templui/filesmanager/internal/middleware"
	"github.com/templui/filesmanager/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Connect exchanges HTTP Basic credentials for a session token
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.authService.Connect(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Disconnect(r.Context(), middleware.Token(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
