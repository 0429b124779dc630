package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/dshills/inkstorm/internal/logging"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// anthropicProvider backs requests with the Anthropic Messages API.
type anthropicProvider struct {
	client anthropic.Client
	model  string
	logger *logging.Logger
}

func newAnthropicProvider(opts Options) *anthropicProvider {
	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &anthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(opts.APIKey)),
		model:  model,
		logger: opts.Logger.WithComponent("ai.anthropic"),
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) RequestCompletion(ctx context.Context, textBeforeCaret, documentContext string) (string, error) {
	text, err := p.send(ctx, completionSystemPrompt, buildCompletionPrompt(textBeforeCaret, documentContext))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p *anthropicProvider) RequestModifications(ctx context.Context, message, documentContext string, selections []Selection) (*ModificationResponse, error) {
	raw, err := p.send(ctx, modificationSystemPrompt, buildModificationPayload(message, documentContext, selections))
	if err != nil {
		return nil, err
	}
	return ParseModifications(raw)
}

// send issues one Messages request and concatenates the text blocks of
// the reply.
func (p *anthropicProvider) send(ctx context.Context, system, user string) (string, error) {
	logger := p.logger.WithField("request_id", uuid.NewString())
	logger.Debug("sending request model=%s bytes=%d", p.model, len(user))

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		logger.Warn("request failed: %v", err)
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		logger.Warn("response contained no text blocks")
		return "", ErrEmptyResponse
	}

	logger.Debug("received %d bytes", len(text))
	return text, nil
}
