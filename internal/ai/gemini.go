package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/dshills/inkstorm/internal/logging"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiProvider backs requests with the Gemini API. The SDK client
// requires a context to construct, so it is created lazily on the first
// request.
type geminiProvider struct {
	apiKey string
	model  string
	logger *logging.Logger

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func newGeminiProvider(opts Options) *geminiProvider {
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiProvider{
		apiKey: opts.APIKey,
		model:  model,
		logger: opts.Logger.WithComponent("ai.gemini"),
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) RequestCompletion(ctx context.Context, textBeforeCaret, documentContext string) (string, error) {
	return p.send(ctx, completionSystemPrompt, buildCompletionPrompt(textBeforeCaret, documentContext))
}

func (p *geminiProvider) RequestModifications(ctx context.Context, message, documentContext string, selections []Selection) (*ModificationResponse, error) {
	raw, err := p.send(ctx, modificationSystemPrompt, buildModificationPayload(message, documentContext, selections))
	if err != nil {
		return nil, err
	}
	return ParseModifications(raw)
}

func (p *geminiProvider) ensureClient(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.clientErr = genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	})
	return p.client, p.clientErr
}

func (p *geminiProvider) send(ctx context.Context, system, user string) (string, error) {
	logger := p.logger.WithField("request_id", uuid.NewString())
	logger.Debug("sending request model=%s bytes=%d", p.model, len(user))

	client, err := p.ensureClient(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	model := client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		logger.Warn("request failed: %v", err)
		return "", fmt.Errorf("gemini request: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	text := sb.String()
	if text == "" {
		logger.Warn("response contained no text parts")
		return "", ErrEmptyResponse
	}

	logger.Debug("received %d bytes", len(text))
	return text, nil
}
