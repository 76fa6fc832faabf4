package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/solacelabs/solace-backend/internal/config"
	authhandler "github.com/solacelabs/solace-backend/internal/handler/auth"
	chathandler "github.com/solacelabs/solace-backend/internal/handler/chat"
	insightshandler "github.com/solacelabs/solace-backend/internal/handler/insights"
	moodhandler "github.com/solacelabs/solace-backend/internal/handler/mood"
	preferencehandler "github.com/solacelabs/solace-backend/internal/handler/preference"
	"github.com/solacelabs/solace-backend/internal/middleware"
	authservice "github.com/solacelabs/solace-backend/internal/service/auth"
	insightsservice "github.com/solacelabs/solace-backend/internal/service/insights"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

// Deps collects everything the router wires together.
type Deps struct {
	Config        *config.Config
	Users         *store.Users
	Conversations *store.Conversations
	Preferences   *store.Preferences
	Moods         *store.Moods
	Tokens        *authservice.Service
	Insights      *insightsservice.Service
	Runner        chathandler.TurnRunner
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := authhandler.New(deps.Users, deps.Tokens)
	chatHandler := chathandler.New(deps.Runner, deps.Conversations, deps.Preferences)
	wsHandler := chathandler.NewWebSocketHandler(deps.Runner, chatHandler, deps.Config.CORS.AllowedOrigins)
	moodHandler := moodhandler.New(deps.Moods)
	preferenceHandler := preferencehandler.New(deps.Preferences)
	insightsHandler := insightshandler.New(deps.Insights)

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterPublicRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Auth(deps.Tokens, deps.Users))

			authHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)
			wsHandler.RegisterRoutes(protected)
			moodHandler.RegisterRoutes(protected)
			preferenceHandler.RegisterRoutes(protected)
			insightsHandler.RegisterRoutes(protected)
		})
	})

	return r
}
