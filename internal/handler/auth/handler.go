package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solacelabs/solace-backend/internal/middleware"
	authservice "github.com/solacelabs/solace-backend/internal/service/auth"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

const minPasswordLen = 8

// Handler exposes registration, login and profile endpoints.
type Handler struct {
	users  *store.Users
	tokens *authservice.Service
}

func New(users *store.Users, tokens *authservice.Service) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// RegisterPublicRoutes registers routes that do not require a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// RegisterRoutes registers routes behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Email == "" || !strings.Contains(payload.Email, "@") {
		utils.RespondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if payload.Username == "" {
		utils.RespondError(w, http.StatusBadRequest, "username is required")
		return
	}
	if len(payload.Password) < minPasswordLen {
		utils.RespondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := h.tokens.HashPassword(payload.Password)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	account, err := h.users.Create(r.Context(), payload.Email, payload.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		// Same response as a wrong password so accounts cannot be enumerated.
		utils.RespondError(w, http.StatusUnauthorized, authservice.ErrInvalidCredentials.Error())
		return
	}
	if !h.tokens.VerifyPassword(account.HashedPassword, payload.Password) {
		utils.RespondError(w, http.StatusUnauthorized, authservice.ErrInvalidCredentials.Error())
		return
	}
	if !account.IsActive {
		utils.RespondError(w, http.StatusForbidden, "account disabled")
		return
	}

	token, err := h.tokens.CreateAccessToken(account.ID, account.Email)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	utils.RespondJSON(w, http.StatusOK, account)
}
