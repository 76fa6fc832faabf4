package title

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLen    = 50
	fallbackWords  = 5
	jobTimeout     = 30 * time.Second
	defaultWorkers = 4
)

// Summarizer produces a short title from the first exchange of a conversation.
type Summarizer interface {
	Summarize(ctx context.Context, userText, aiText string) (string, error)
}

// Store persists generated titles.
type Store interface {
	UpdateTitle(ctx context.Context, conversationID uuid.UUID, title string) error
}

// Generator runs title generation on a bounded pool of background workers.
// Dispatch never blocks the caller: when the pool is saturated the job is
// dropped and the conversation keeps its placeholder title.
type Generator struct {
	summarizer Summarizer
	store      Store
	group      *errgroup.Group
}

func NewGenerator(summarizer Summarizer, store Store, workers int) *Generator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	group := &errgroup.Group{}
	group.SetLimit(workers)
	return &Generator{
		summarizer: summarizer,
		store:      store,
		group:      group,
	}
}

// Dispatch queues a title job for the conversation. Safe to call from the
// request path; returns immediately whether or not the job was accepted.
func (g *Generator) Dispatch(conversationID uuid.UUID, userText, aiText string) {
	started := g.group.TryGo(func() error {
		g.generate(conversationID, userText, aiText)
		return nil
	})
	if !started {
		log.Printf("[title] worker pool saturated, skipping conversation %s", conversationID)
	}
}

// Wait blocks until all in-flight title jobs finish. Called on shutdown.
func (g *Generator) Wait() {
	_ = g.group.Wait()
}

func (g *Generator) generate(conversationID uuid.UUID, userText, aiText string) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	title := ""
	if g.summarizer != nil {
		generated, err := g.summarizer.Summarize(ctx, userText, aiText)
		if err != nil {
			log.Printf("[title] generation failed for conversation %s: %v", conversationID, err)
		} else {
			title = Sanitize(generated)
		}
	}
	if title == "" {
		title = Fallback(userText)
	}
	if title == "" {
		return
	}

	if err := g.store.UpdateTitle(ctx, conversationID, title); err != nil {
		log.Printf("[title] update failed for conversation %s: %v", conversationID, err)
	}
}

// Sanitize normalizes a model-produced title: surrounding quotes go,
// whitespace is trimmed, and overly long titles are truncated.
func Sanitize(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'“”‘’`)
	title = strings.TrimSpace(title)
	return truncate(title)
}

// Fallback derives a title from the first words of the user's message,
// used when the model gives nothing usable.
func Fallback(userText string) string {
	words := strings.Fields(userText)
	if len(words) == 0 {
		return ""
	}
	if len(words) > fallbackWords {
		words = words[:fallbackWords]
	}
	return truncate(strings.Join(words, " "))
}

func truncate(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}
	return string(runes[:maxTitleLen-3]) + "..."
}
