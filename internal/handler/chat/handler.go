package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/middleware"
	"github.com/solacelabs/solace-backend/internal/service/turn"
	"github.com/solacelabs/solace-backend/internal/store"
	"github.com/solacelabs/solace-backend/pkg/utils"
)

const (
	defaultConversationLimit = 20
	maxConversationLimit     = 100
	defaultMessageLimit      = 50
	maxMessageLimit          = 200
)

// TurnRunner executes one chat turn, emitting events into the sink.
type TurnRunner interface {
	Run(ctx context.Context, userID uuid.UUID, content string, conversationID *uuid.UUID, tone string, sink turn.Sink) error
}

// Handler exposes the chat turn endpoints and conversation management.
type Handler struct {
	runner        TurnRunner
	conversations *store.Conversations
	preferences   *store.Preferences
}

func New(runner TurnRunner, conversations *store.Conversations, preferences *store.Preferences) *Handler {
	return &Handler{
		runner:        runner,
		conversations: conversations,
		preferences:   preferences,
	}
}

// RegisterRoutes registers chat routes behind the auth middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.handleStream)
	r.Post("/chat/message", h.handleMessage)
	r.Get("/chat/conversations", h.handleListConversations)
	r.Get("/chat/conversations/{conversationID}/messages", h.handleListMessages)
	r.Delete("/chat/conversations/{conversationID}", h.handleDeleteConversation)
}

type turnRequest struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
}

func (h *Handler) parseTurnRequest(r *http.Request) (string, *uuid.UUID, error) {
	var payload turnRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return "", nil, errors.New("invalid request body")
	}
	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return "", nil, errors.New("content is required")
	}
	if payload.ConversationID == "" {
		return content, nil, nil
	}
	id, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return "", nil, errors.New("invalid conversationId")
	}
	return content, &id, nil
}

// tone resolves the user's preferred reply tone, defaulting quietly.
func (h *Handler) tone(ctx context.Context, userID uuid.UUID) string {
	pref, err := h.preferences.Get(ctx, userID)
	if err != nil {
		log.Printf("[chat] preference lookup failed for user %s: %v", userID, err)
		return ""
	}
	return pref.PreferredTone
}

// sseSink relays turn events as Server-Sent Events frames. A cancelled
// request context marks the client as gone so the turn stops relaying.
type sseSink struct {
	ctx     context.Context
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseSink) Send(event turn.Event) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	utils.SendSSEChunk(s.w, s.flusher, event)
	return nil
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	content, conversationID, err := h.parseTurnRequest(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	tone := h.tone(r.Context(), account.ID)

	utils.SetupSSEHeaders(w)
	flusher.Flush()

	sink := &sseSink{ctx: r.Context(), w: w, flusher: flusher}
	if err := h.runner.Run(r.Context(), account.ID, content, conversationID, tone, sink); err != nil {
		// The sink already carried a terminal error event; headers are gone.
		log.Printf("[chat] stream turn failed for user %s: %v", account.ID, err)
	}
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	content, conversationID, err := h.parseTurnRequest(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tone := h.tone(r.Context(), account.ID)

	sink := &turn.Collector{}
	if err := h.runner.Run(r.Context(), account.ID, content, conversationID, tone, sink); err != nil {
		status := http.StatusBadGateway
		message := "failed to generate a reply"
		if last, ok := sink.Last(); ok && last.Type == turn.EventError && last.Message != "" {
			message = last.Message
		}
		if strings.Contains(message, "not found") {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, message)
		return
	}

	last, ok := sink.Last()
	if !ok || last.Type != turn.EventComplete {
		utils.RespondError(w, http.StatusBadGateway, "failed to generate a reply")
		return
	}

	messageID, err := uuid.Parse(last.MessageID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load reply")
		return
	}
	reply, err := h.conversations.GetMessage(r.Context(), messageID, account.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load reply")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversationId": last.ConversationID,
		"message":        reply,
	})
}

func (h *Handler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	skip, limit := pagination(r, defaultConversationLimit, maxConversationLimit)
	conversations, err := h.conversations.ListForUser(r.Context(), account.ID, skip, limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversations)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	skip, limit := pagination(r, defaultMessageLimit, maxMessageLimit)
	messages, err := h.conversations.ListMessages(r.Context(), conversationID, account.ID, skip, limit)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	if err := h.conversations.Delete(r.Context(), conversationID, account.ID); err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pagination(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
