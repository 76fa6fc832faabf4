package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/middleware"
	"github.com/solacelabs/solace-backend/internal/model/chat"
	"github.com/solacelabs/solace-backend/internal/model/user"
	"github.com/solacelabs/solace-backend/internal/service/turn"
	"github.com/solacelabs/solace-backend/internal/store"
)

type fakeRunner struct {
	events  []turn.Event
	err     error
	content string
	tone    string
}

func (f *fakeRunner) Run(_ context.Context, _ uuid.UUID, content string, _ *uuid.UUID, tone string, sink turn.Sink) error {
	f.content = content
	f.tone = tone
	for _, event := range f.events {
		if err := sink.Send(event); err != nil {
			return err
		}
	}
	return f.err
}

func newTestHandler(t *testing.T, runner TurnRunner) (*Handler, *store.Conversations, *user.User) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := store.NewUsers(db)
	account, err := users.Create(context.Background(), "tester@example.com", "tester", "hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	conversations := store.NewConversations(db)
	return New(runner, conversations, store.NewPreferences(db)), conversations, account
}

func authedRequest(method, target, body string, account *user.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUser(req.Context(), account))
}

func sseEvents(t *testing.T, body string) []turn.Event {
	t.Helper()
	var events []turn.Event
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event turn.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad sse frame %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestHandleStream(t *testing.T) {
	conversationID := uuid.New()
	runner := &fakeRunner{events: []turn.Event{
		{Type: turn.EventConversation, ConversationID: conversationID.String()},
		{Type: turn.EventChunk, Content: "Hello"},
		{Type: turn.EventComplete, ConversationID: conversationID.String(), MessageID: uuid.New().String()},
	}}
	handler, _, account := newTestHandler(t, runner)

	req := authedRequest(http.MethodPost, "/api/chat/stream", `{"content":"hi there"}`, account)
	rec := httptest.NewRecorder()
	handler.handleStream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	events := sseEvents(t, rec.Body.String())
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != turn.EventConversation || events[2].Type != turn.EventComplete {
		t.Fatalf("unexpected event order: %v", events)
	}
	if runner.content != "hi there" {
		t.Fatalf("runner content = %q", runner.content)
	}
	// First-use preference defaults flow into the turn.
	if runner.tone != "friendly" {
		t.Fatalf("runner tone = %q", runner.tone)
	}
}

func TestHandleStreamRejectsEmptyContent(t *testing.T) {
	handler, _, account := newTestHandler(t, &fakeRunner{})

	req := authedRequest(http.MethodPost, "/api/chat/stream", `{"content":"   "}`, account)
	rec := httptest.NewRecorder()
	handler.handleStream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMessageReturnsPersistedReply(t *testing.T) {
	runner := &fakeRunner{}
	handler, conversations, account := newTestHandler(t, runner)

	conversation, err := conversations.Create(context.Background(), account.ID, chat.PlaceholderTitle)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	reply, err := conversations.AppendMessage(context.Background(), conversation.ID, account.ID, "I'm here for you.", false)
	if err != nil {
		t.Fatalf("append reply: %v", err)
	}

	runner.events = []turn.Event{
		{Type: turn.EventConversation, ConversationID: conversation.ID.String()},
		{Type: turn.EventChunk, Content: "I'm here for you."},
		{Type: turn.EventComplete, ConversationID: conversation.ID.String(), MessageID: reply.ID.String()},
	}

	req := authedRequest(http.MethodPost, "/api/chat/message", `{"content":"rough day"}`, account)
	rec := httptest.NewRecorder()
	handler.handleMessage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		ConversationID string       `json:"conversationId"`
		Message        chat.Message `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ConversationID != conversation.ID.String() {
		t.Fatalf("conversation id = %q", payload.ConversationID)
	}
	if payload.Message.Content != "I'm here for you." {
		t.Fatalf("message content = %q", payload.Message.Content)
	}
}

func TestHandleMessageTurnFailure(t *testing.T) {
	runner := &fakeRunner{
		events: []turn.Event{
			{Type: turn.EventError, Message: "conversation not found or access denied"},
		},
		err: errors.New("turn failed"),
	}
	handler, _, account := newTestHandler(t, runner)

	req := authedRequest(http.MethodPost, "/api/chat/message", `{"content":"hello","conversationId":"`+uuid.NewString()+`"}`, account)
	rec := httptest.NewRecorder()
	handler.handleMessage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestConversationEndpoints(t *testing.T) {
	handler, conversations, account := newTestHandler(t, &fakeRunner{})

	conversation, _ := conversations.Create(context.Background(), account.ID, chat.PlaceholderTitle)
	_, _ = conversations.AppendMessage(context.Background(), conversation.ID, account.ID, "hello", true)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	// Listing.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/chat/conversations", "", account))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []chat.Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != conversation.ID {
		t.Fatalf("unexpected listing: %v", listed)
	}

	// Messages.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/chat/conversations/"+conversation.ID.String()+"/messages", "", account))
	if rec.Code != http.StatusOK {
		t.Fatalf("messages status = %d", rec.Code)
	}
	var messages []chat.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %v", messages)
	}

	// Delete, then the listing is empty.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/chat/conversations/"+conversation.ID.String(), "", account))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/chat/conversations/"+conversation.ID.String(), "", account))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d", rec.Code)
	}
}
