// Package chat runs the site's single-turn assistant widget.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// FallbackReply is appended as a normal assistant turn whenever generation
// fails. The widget never surfaces a raw error.
const FallbackReply = "Deployment nodes are at capacity. Please book an audit session via the form below."

var (
	// ErrBusy rejects a send while a previous one is still generating.
	ErrBusy = errors.New("chat: reply in progress")
	// ErrEmptyMessage rejects blank input.
	ErrEmptyMessage = errors.New("chat: message is empty")
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one transcript entry. The transcript is append-only.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Generator produces one assistant reply for one user message. Prior turns
// are never sent.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// Conversation is one widget instance's transcript plus its composing guard.
type Conversation struct {
	gen    Generator
	logger *slog.Logger

	mu    sync.Mutex
	busy  bool
	turns []Turn
}

func NewConversation(gen Generator, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{gen: gen, logger: logger}
}

// Send appends the user turn, generates a reply, and appends it. Concurrent
// sends on the same conversation are rejected with ErrBusy; the guard is
// always released, including on generation failure.
func (c *Conversation) Send(ctx context.Context, message string) (Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Turn{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Turn{}, ErrBusy
	}
	c.busy = true
	c.turns = append(c.turns, Turn{Speaker: SpeakerUser, Text: message})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	text, err := c.gen.Generate(ctx, message)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			c.logger.Warn("chat generation failed", "error", err)
		}
		text = FallbackReply
	}

	reply := Turn{Speaker: SpeakerAssistant, Text: text}
	c.mu.Lock()
	c.turns = append(c.turns, reply)
	c.mu.Unlock()
	return reply, nil
}

// Transcript returns a copy of the turns so far.
func (c *Conversation) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.turns...)
}
