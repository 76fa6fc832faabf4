package insights

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solacelabs/solace-backend/internal/middleware"
	insightsservice "github.com/solacelabs/solace-backend/internal/service/insights"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

// Handler exposes the analytics summary endpoint.
type Handler struct {
	insights *insightsservice.Service
}

func New(insights *insightsservice.Service) *Handler {
	return &Handler{insights: insights}
}

// RegisterRoutes registers insights routes behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/insights/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	period := r.URL.Query().Get("period")
	switch period {
	case "", insightsservice.PeriodWeek:
		period = insightsservice.PeriodWeek
	case insightsservice.PeriodMonth, insightsservice.PeriodAll:
	default:
		utils.RespondError(w, http.StatusBadRequest, "period must be week, month or all")
		return
	}

	summary, err := h.insights.Summarize(r.Context(), account.ID, period)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to compute insights")
		return
	}
	utils.RespondJSON(w, http.StatusOK, summary)
}
