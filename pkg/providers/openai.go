package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/quantora/riskdesk/pkg/logger"
)

const openaiDefaultModel = "gpt-4o-mini"

// OpenAIResponder backs the assistant with the OpenAI chat completions API.
// Also works against any OpenAI-compatible endpoint via a custom base URL.
type OpenAIResponder struct {
	client   openai.Client
	model    string
	fallback *CannedResponder
}

// NewOpenAIResponder creates an OpenAI-backed responder. An empty model
// selects the default; an empty baseURL uses the public API.
func NewOpenAIResponder(apiKey, model, baseURL string) *OpenAIResponder {
	if model == "" {
		model = openaiDefaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIResponder{
		client:   openai.NewClient(opts...),
		model:    model,
		fallback: NewCannedResponder(),
	}
}

func (r *OpenAIResponder) systemPrompt(selected *SelectedWidget) string {
	base := "You are the assistant of a financial risk-management dashboard. Answer in one or two sentences."
	if selected == nil {
		return base + " No widget is currently selected."
	}
	return fmt.Sprintf("%s The user has the %q widget (type %s) selected.", base, selected.Title, selected.Type)
}

// Respond calls the chat completions API and degrades to the canned reply on
// error.
func (r *OpenAIResponder) Respond(ctx context.Context, prompt string, selected *SelectedWidget) (Reply, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.systemPrompt(selected)),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.WarnCF("providers", "OpenAI request failed, using canned reply", map[string]interface{}{
			"error": err.Error(),
		})
		return r.fallback.Respond(ctx, prompt, selected)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return r.fallback.Respond(ctx, prompt, selected)
	}
	return Reply{Content: resp.Choices[0].Message.Content, Actions: defaultActions(selected)}, nil
}

// Verify interface compliance at compile time.
var _ Responder = (*OpenAIResponder)(nil)
