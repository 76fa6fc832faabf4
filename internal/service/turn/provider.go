package turn

import (
	"context"

	"github.com/solacelabs/solace-backend/internal/model/chat"
	aiservice "github.com/solacelabs/solace-backend/internal/service/ai"
)

// aiProvider adapts the eino-backed AI service to the CompletionProvider
// interface so the orchestrator can be tested with fakes.
type aiProvider struct {
	svc *aiservice.Service
}

// NewProvider wraps the AI service as a CompletionProvider.
func NewProvider(svc *aiservice.Service) CompletionProvider {
	return aiProvider{svc: svc}
}

func (p aiProvider) StreamReply(ctx context.Context, history []chat.Message, userText, tone string) (CompletionStream, error) {
	stream, err := p.svc.StreamReply(ctx, history, userText, tone)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
