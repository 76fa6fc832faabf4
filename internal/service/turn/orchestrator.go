package turn

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/analysis/emotion"
	"github.com/solacelabs/solace-backend/internal/model/chat"
	emotionmodel "github.com/solacelabs/solace-backend/internal/model/emotion"
)

// thinkingFiller keeps the transport alive during provider latency. It is
// emitted once before the first real fragment and never persisted or
// counted as model output.
const thinkingFiller = "Thinking... "

// ErrTurnFailed is returned when a turn terminated with an error event.
var ErrTurnFailed = errors.New("turn terminated with error")

// ConversationStore is the narrow persistence surface a turn needs.
type ConversationStore interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*chat.Conversation, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*chat.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, userID uuid.UUID, content string, isFromUser bool) (*chat.Message, error)
	RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]chat.Message, error)
	CountUserMessages(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

// EmotionRecorder persists detected emotions. Failures are swallowed by the
// orchestrator.
type EmotionRecorder interface {
	Record(ctx context.Context, record *emotionmodel.Record) error
}

// CompletionStream is a lazy sequence of normalized text fragments.
// Recv returns io.EOF on normal end; any other error is a provider fault.
type CompletionStream interface {
	Recv() (string, error)
	Close()
}

// CompletionProvider opens a streamed completion from the bounded prior
// history plus one new user message. Stateless per call; safe for
// concurrent turns.
type CompletionProvider interface {
	StreamReply(ctx context.Context, history []chat.Message, userText, tone string) (CompletionStream, error)
}

// TitleDispatcher schedules background title generation. Must not block and
// must not let its failures reach the turn.
type TitleDispatcher interface {
	Dispatch(conversationID uuid.UUID, userText, aiText string)
}

// Orchestrator drives one user message through to a persisted,
// emotion-tagged AI reply, streaming incremental output to the sink as it
// becomes available.
//
// Side effects per turn, strictly ordered: persist user message, stream
// completion, persist clean AI message, record emotion (best effort),
// dispatch title generation for the first AI turn (fire and forget). A
// provider fault after streaming began leaves the user message persisted
// and nothing else: there is no partial-AI-message state.
type Orchestrator struct {
	conversations ConversationStore
	emotions      EmotionRecorder
	provider      CompletionProvider
	titles        TitleDispatcher
	historyLimit  int
}

// New constructs an orchestrator. titles may be nil when title generation
// is disabled.
func New(conversations ConversationStore, emotions EmotionRecorder, provider CompletionProvider, titles TitleDispatcher, historyLimit int) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Orchestrator{
		conversations: conversations,
		emotions:      emotions,
		provider:      provider,
		titles:        titles,
		historyLimit:  historyLimit,
	}
}

// Run executes one turn for the authenticated user. conversationID may be
// nil to start a new conversation. Events are delivered to sink in the
// documented order: conversation_id, chunks, then exactly one of complete
// or error.
//
// The turn deliberately outlives ctx: once the user message is persisted,
// provider consumption and persistence continue on a detached context so a
// client disconnect does not lose the reply. Only relaying stops.
func (o *Orchestrator) Run(ctx context.Context, userID uuid.UUID, content string, conversationID *uuid.UUID, tone string, sink Sink) error {
	detached := context.WithoutCancel(ctx)

	// Step 1: resolve or create the conversation.
	var conversation *chat.Conversation
	var err error
	if conversationID == nil {
		conversation, err = o.conversations.Create(ctx, userID, chat.PlaceholderTitle)
		if err != nil {
			log.Printf("[turn] failed to create conversation: %v", err)
			return o.fail(sink, "failed to create conversation")
		}
	} else {
		conversation, err = o.conversations.GetOwned(ctx, *conversationID, userID)
		if err != nil {
			return o.fail(sink, "conversation not found or access denied")
		}
	}

	// Load the prior history before appending, so the provider sees only
	// what came before this turn.
	history, err := o.conversations.RecentMessages(ctx, conversation.ID, o.historyLimit)
	if err != nil {
		log.Printf("[turn] failed to load history: %v", err)
		return o.fail(sink, "failed to load conversation history")
	}

	// Step 2: persist the user message before any provider call, so the
	// input is durable even if the completion fails.
	if _, err := o.conversations.AppendMessage(ctx, conversation.ID, userID, content, true); err != nil {
		log.Printf("[turn] failed to save user message: %v", err)
		return o.fail(sink, "failed to save message")
	}

	o.send(sink, Event{Type: EventConversation, ConversationID: conversation.ID.String()})

	// Step 3: open the completion stream and relay fragments as they
	// arrive. The filler chunk goes out first to cover provider latency.
	stream, err := o.provider.StreamReply(detached, history, content, tone)
	if err != nil {
		log.Printf("[turn] provider open failed: %v", err)
		return o.fail(sink, "ai response generation failed")
	}
	defer stream.Close()

	relaying := o.send(sink, Event{Type: EventChunk, Content: thinkingFiller})

	var buffer strings.Builder
	for {
		fragment, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			// Step 4: provider fault mid-stream. The user message stays;
			// no AI message is persisted.
			log.Printf("[turn] provider stream failed: %v", recvErr)
			return o.fail(sink, "ai response generation failed")
		}

		buffer.WriteString(fragment)
		if relaying && strings.TrimSpace(fragment) != "" && !isEmotionMarker(fragment) {
			relaying = o.send(sink, Event{Type: EventChunk, Content: fragment})
		}
	}

	// Step 5: post-process the drained buffer. Both functions are total
	// over arbitrary strings.
	cleanText, label, confidence := emotion.ExtractTag(buffer.String())
	intensity := emotion.EstimateIntensity(content)

	// Step 6: persist the clean AI reply.
	aiMessage, err := o.conversations.AppendMessage(detached, conversation.ID, userID, cleanText, false)
	if err != nil {
		log.Printf("[turn] failed to save ai message: %v", err)
		return o.fail(sink, "failed to save ai response")
	}

	// Step 7: best-effort emotion record.
	record := &emotionmodel.Record{
		UserID:         userID,
		ConversationID: conversation.ID,
		MessageID:      aiMessage.ID,
		Emotion:        label,
		Confidence:     confidence,
		Intensity:      intensity,
		UserMessage:    content,
		AIResponse:     cleanText,
	}
	if err := o.emotions.Record(detached, record); err != nil {
		log.Printf("[turn] emotion tracking failed: %v", err)
	}

	// Step 8: trigger title generation once, on the first AI turn.
	if o.titles != nil {
		if count, err := o.conversations.CountUserMessages(detached, conversation.ID); err != nil {
			log.Printf("[turn] failed to count user messages: %v", err)
		} else if count == 1 {
			o.titles.Dispatch(conversation.ID, content, cleanText)
		}
	}

	// Step 9: terminal event.
	o.send(sink, Event{
		Type:           EventComplete,
		ConversationID: conversation.ID.String(),
		MessageID:      aiMessage.ID.String(),
	})
	return nil
}

// isEmotionMarker reports whether a fragment is the trailing emotion tag the
// model was instructed to append. Marker fragments are buffered for
// extraction but never relayed to the client.
func isEmotionMarker(fragment string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(fragment)), "EMOTION:")
}

// send pushes an event and reports whether the sink is still accepting.
func (o *Orchestrator) send(sink Sink, event Event) bool {
	if err := sink.Send(event); err != nil {
		log.Printf("[turn] sink closed, stop relaying: %v", err)
		return false
	}
	return true
}

// fail emits the terminal error event and returns ErrTurnFailed.
func (o *Orchestrator) fail(sink Sink, message string) error {
	o.send(sink, Event{Type: EventError, Message: message})
	return ErrTurnFailed
}
