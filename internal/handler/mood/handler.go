package mood

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solacelabs/solace-backend/internal/middleware"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

const (
	defaultHistoryDays = 7
	maxHistoryDays     = 365
)

// Handler exposes mood check-in endpoints.
type Handler struct {
	moods *store.Moods
}

func New(moods *store.Moods) *Handler {
	return &Handler{moods: moods}
}

// RegisterRoutes registers mood routes behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood/checkin", h.handleCheckin)
	r.Get("/mood/history", h.handleHistory)
	r.Get("/mood/stats", h.handleStats)
}

func (h *Handler) handleCheckin(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload struct {
		Mood      string `json:"mood"`
		Intensity int    `json:"intensity"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Mood = strings.ToLower(strings.TrimSpace(payload.Mood))
	if payload.Mood == "" {
		utils.RespondError(w, http.StatusBadRequest, "mood is required")
		return
	}
	if payload.Intensity == 0 {
		payload.Intensity = 3
	}

	entry, err := h.moods.Create(r.Context(), account.ID, payload.Mood, payload.Intensity, payload.Note)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to record check-in")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	days := windowDays(r)
	entries, err := h.moods.History(r.Context(), account.ID, days)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load mood history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	days := windowDays(r)
	stats, err := h.moods.Stats(r.Context(), account.ID, days)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to compute mood stats")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func windowDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return defaultHistoryDays
	}
	if days > maxHistoryDays {
		return maxHistoryDays
	}
	return days
}
