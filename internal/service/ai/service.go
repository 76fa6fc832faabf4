package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/solacelabs/solace-backend/internal/config"
	"github.com/solacelabs/solace-backend/internal/model/chat"
)

// Service wraps the completion provider behind two compiled chains: the
// streaming reply chain and a cheaper title-summarization chain. It never
// persists anything.
type Service struct {
	chatModel  model.ChatModel
	titleModel model.ChatModel
	cfg        config.AIConfig
	replyChain compose.Runnable[map[string]any, *schema.Message]
	titleChain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the reply and title chains against the configured
// Ark models.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	titleModel, err := cfg.NewTitleModel(ctx)
	if err != nil {
		log.Printf("[ai] title model unavailable, reusing chat model: %v", err)
		titleModel = chatModel
	}

	replyTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	replyChain := compose.NewChain[map[string]any, *schema.Message]()
	replyChain.AppendChatTemplate(replyTemplate)
	replyChain.AppendChatModel(chatModel)

	reply, err := replyChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	titleTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(titlePrompt),
	)

	titleChain := compose.NewChain[map[string]any, *schema.Message]()
	titleChain.AppendChatTemplate(titleTemplate)
	titleChain.AppendChatModel(titleModel)

	title, err := titleChain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile title chain: %w", err)
	}

	return &Service{
		chatModel:  chatModel,
		titleModel: titleModel,
		cfg:        cfg,
		replyChain: reply,
		titleChain: title,
	}, nil
}

// StreamReply opens a streamed completion for one turn. history is the
// bounded prior transcript, oldest first; tone selects a personality preset.
// Fragments are normalized through Stream before they reach the caller.
func (s *Service) StreamReply(ctx context.Context, history []chat.Message, userText, tone string) (*Stream, error) {
	input := map[string]any{
		"system":  buildSystemPrompt(tone),
		"history": historyMessages(history),
		"query":   userText,
	}

	stream, err := s.replyChain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream completion: %w", err)
	}

	return newStream(stream), nil
}

// Summarize produces a short raw title for the first exchange. The caller
// owns sanitizing and fallback.
func (s *Service) Summarize(ctx context.Context, userText, aiText string) (string, error) {
	input := map[string]any{
		"user_message":    userText,
		"assistant_reply": aiText,
	}

	msg, err := s.titleChain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("title chain returned empty output")
	}

	return strings.TrimSpace(msg.Content), nil
}

// historyMessages converts stored messages into schema messages for the
// prompt placeholder.
func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.IsFromUser {
			history = append(history, schema.UserMessage(msg.Content))
		} else {
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
