package chat

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/solacelabs/solace-backend/internal/middleware"
	"github.com/solacelabs/solace-backend/internal/service/turn"
)

const (
	readDeadline = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler runs chat turns over a persistent WebSocket connection.
// Each inbound frame is one user message; the turn's events are written back
// as JSON frames in order.
type WebSocketHandler struct {
	runner      TurnRunner
	preferences preferenceSource
	upgrader    websocket.Upgrader
}

type preferenceSource interface {
	tone(ctx context.Context, userID uuid.UUID) string
}

func NewWebSocketHandler(runner TurnRunner, h *Handler, allowedOrigins []string) *WebSocketHandler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return &WebSocketHandler{
		runner:      runner,
		preferences: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket route behind the auth middleware.
// Browsers cannot set headers on WebSocket upgrades, so the middleware's
// token query parameter fallback applies here.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type inboundTurn struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversationId"`
}

// wsSink writes turn events to the connection, serialized against pings.
type wsSink struct {
	conn *websocket.Conn
	mu   *sync.Mutex
}

func (s *wsSink) Send(event turn.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(event)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFrom(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for user %s", account.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, conn, &writeMu)

	sink := &wsSink{conn: conn, mu: &writeMu}
	tone := h.preferences.tone(ctx, account.ID)

	for {
		var msg inboundTurn
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error for user %s: %v", account.ID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))

		content := strings.TrimSpace(msg.Content)
		if content == "" {
			_ = sink.Send(turn.Event{Type: turn.EventError, Message: "content is required"})
			continue
		}

		var conversationID *uuid.UUID
		if msg.ConversationID != "" {
			id, err := uuid.Parse(msg.ConversationID)
			if err != nil {
				_ = sink.Send(turn.Event{Type: turn.EventError, Message: "invalid conversationId"})
				continue
			}
			conversationID = &id
		}

		if err := h.runner.Run(ctx, account.ID, content, conversationID, tone, sink); err != nil {
			// The sink already carried the error event; keep the connection.
			log.Printf("[websocket] turn failed for user %s: %v", account.ID, err)
		}
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
