package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/inkstorm/internal/logging"
)

const defaultOpenAIModel = "gpt-4o-mini"

// openAIProvider backs requests with the OpenAI Chat Completions API.
type openAIProvider struct {
	client openai.Client
	model  string
	logger *logging.Logger
}

func newOpenAIProvider(opts Options) *openAIProvider {
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIProvider{
		client: openai.NewClient(option.WithAPIKey(opts.APIKey)),
		model:  model,
		logger: opts.Logger.WithComponent("ai.openai"),
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) RequestCompletion(ctx context.Context, textBeforeCaret, documentContext string) (string, error) {
	return p.send(ctx, completionSystemPrompt, buildCompletionPrompt(textBeforeCaret, documentContext))
}

func (p *openAIProvider) RequestModifications(ctx context.Context, message, documentContext string, selections []Selection) (*ModificationResponse, error) {
	raw, err := p.send(ctx, modificationSystemPrompt, buildModificationPayload(message, documentContext, selections))
	if err != nil {
		return nil, err
	}
	return ParseModifications(raw)
}

func (p *openAIProvider) send(ctx context.Context, system, user string) (string, error) {
	logger := p.logger.WithField("request_id", uuid.NewString())
	logger.Debug("sending request model=%s bytes=%d", p.model, len(user))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		logger.Warn("request failed: %v", err)
		return "", fmt.Errorf("openai request: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		logger.Warn("response contained no choices")
		return "", ErrEmptyResponse
	}

	text := resp.Choices[0].Message.Content
	logger.Debug("received %d bytes", len(text))
	return text, nil
}
