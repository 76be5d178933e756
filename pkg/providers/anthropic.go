package providers

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/quantora/riskdesk/pkg/logger"
)

const anthropicDefaultModel = "claude-sonnet-4-0"

// AnthropicResponder backs the assistant with the Anthropic Messages API.
// The offered actions are still derived from the selection state — a real
// backend changes the reply text, never the state-machine contract.
type AnthropicResponder struct {
	client   anthropic.Client
	model    string
	fallback *CannedResponder
}

// NewAnthropicResponder creates an Anthropic-backed responder. An empty model
// selects the default.
func NewAnthropicResponder(apiKey, model string) *AnthropicResponder {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicResponder{
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		fallback: NewCannedResponder(),
	}
}

func (r *AnthropicResponder) systemPrompt(selected *SelectedWidget) string {
	base := "You are the assistant of a financial risk-management dashboard. Answer in one or two sentences."
	if selected == nil {
		return base + " No widget is currently selected."
	}
	return fmt.Sprintf("%s The user has the %q widget (type %s) selected.", base, selected.Title, selected.Type)
}

// Respond calls the Messages API and degrades to the canned reply on error.
func (r *AnthropicResponder) Respond(ctx context.Context, prompt string, selected *SelectedWidget) (Reply, error) {
	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: r.systemPrompt(selected)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.WarnCF("providers", "Anthropic request failed, using canned reply", map[string]interface{}{
			"error": err.Error(),
		})
		return r.fallback.Respond(ctx, prompt, selected)
	}

	content := ""
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return r.fallback.Respond(ctx, prompt, selected)
	}
	return Reply{Content: content, Actions: defaultActions(selected)}, nil
}

// Verify interface compliance at compile time.
var _ Responder = (*AnthropicResponder)(nil)
