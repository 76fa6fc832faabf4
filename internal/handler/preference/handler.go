package preference

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solacelabs/solace-backend/internal/middleware"
	"github.com/solacelabs/solace-backend/internal/service/ai"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

// Handler exposes personalization endpoints.
type Handler struct {
	preferences *store.Preferences
}

func New(preferences *store.Preferences) *Handler {
	return &Handler{preferences: preferences}
}

// RegisterRoutes registers preference routes behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/preferences", h.handleGet)
	r.Put("/preferences", h.handleUpdate)
	r.Get("/preferences/tones", h.handleListTones)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	pref, err := h.preferences.Get(r.Context(), account.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	utils.RespondJSON(w, http.StatusOK, pref)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload struct {
		PreferredLanguage *string         `json:"preferredLanguage"`
		PreferredTone     *string         `json:"preferredTone"`
		ConversationStyle *string         `json:"conversationStyle"`
		ResponseLength    *string         `json:"responseLength"`
		Name              *string         `json:"name"`
		Timezone          *string         `json:"timezone"`
		CustomContext     *string         `json:"customContext"`
		TopicsOfInterest  json.RawMessage `json:"topicsOfInterest"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pref, err := h.preferences.Get(r.Context(), account.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	if payload.PreferredTone != nil {
		tone := strings.ToLower(strings.TrimSpace(*payload.PreferredTone))
		if !ai.IsKnownTone(tone) {
			utils.RespondError(w, http.StatusBadRequest, "unknown tone preset")
			return
		}
		pref.PreferredTone = tone
	}
	if payload.PreferredLanguage != nil {
		pref.PreferredLanguage = strings.TrimSpace(*payload.PreferredLanguage)
	}
	if payload.ConversationStyle != nil {
		pref.ConversationStyle = strings.TrimSpace(*payload.ConversationStyle)
	}
	if payload.ResponseLength != nil {
		pref.ResponseLength = strings.TrimSpace(*payload.ResponseLength)
	}
	if payload.Name != nil {
		pref.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Timezone != nil {
		pref.Timezone = strings.TrimSpace(*payload.Timezone)
	}
	if payload.CustomContext != nil {
		pref.CustomContext = strings.TrimSpace(*payload.CustomContext)
	}
	if payload.TopicsOfInterest != nil {
		pref.TopicsOfInterest = []byte(payload.TopicsOfInterest)
	}

	if err := h.preferences.Save(r.Context(), pref); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	utils.RespondJSON(w, http.StatusOK, pref)
}

func (h *Handler) handleListTones(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"tones": ai.ToneNames()})
}
