package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/paulgroup/leadbot/internal/training"
	"github.com/paulgroup/leadbot/pkg/logging"
)

const personaPrompt = "You are Nia, a friendly insurance assistant for The Paul Group. " +
	"You help people get Final Expense insurance quotes over SMS. " +
	"Keep replies short (1-2 sentences), warm and professional, and always steer " +
	"the conversation back toward completing a quote. Never give medical, legal " +
	"or financial advice and never quote exact prices."

const redirectReply = "Sorry, I didn't quite get that. Would you like a quick Final Expense insurance quote? Just reply *Yes* to get started!"

// Responder answers off-script messages with a small LLM completion. Any
// provider failure degrades to a static redirect so the lead always gets a
// reply.
type Responder struct {
	client    LLMClient
	model     string
	maxTokens int32
	timeout   time.Duration
	logger    *logging.Logger
}

// NewResponder builds a Responder. A nil client yields a responder that
// always returns the static redirect.
func NewResponder(client LLMClient, model string, maxTokens int32, timeout time.Duration, logger *logging.Logger) *Responder {
	if maxTokens <= 0 {
		maxTokens = 120
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
	}
}

// Reply generates a persona-scoped answer to msg. It never returns an empty
// string and never propagates provider errors to the caller.
func (r *Responder) Reply(ctx context.Context, msg string) string {
	if r == nil || r.client == nil {
		return redirectReply
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Complete(ctx, LLMRequest{
		Model: r.model,
		System: []string{
			personaPrompt,
		},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: msg},
		},
		MaxTokens:   r.maxTokens,
		Temperature: -1,
	})
	if err != nil {
		r.logger.Warn("llm reply failed, using redirect", "error", err)
		return redirectReply
	}

	text := training.SanitizeForSMS(resp.Text)
	if strings.TrimSpace(text) == "" {
		r.logger.Warn("llm returned empty reply, using redirect")
		return redirectReply
	}
	return text
}
