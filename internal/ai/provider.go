// Package ai implements the completion and modification backend the
// suggestion engine consumes. Anthropic, OpenAI, and Gemini sit behind
// one Provider interface. All failures are
// reported as errors; the engine treats transport failures as "no
// suggestion" and only malformed payloads as user-visible.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/inkstorm/internal/logging"
)

// Errors returned by the backend.
var (
	ErrMalformedResponse = errors.New("malformed backend response")
	ErrEmptyResponse     = errors.New("empty backend response")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrMissingAPIKey     = errors.New("missing API key")
)

// Selection is a document span included in a modification request.
type Selection struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Text string `json:"text"`
}

// Modification is a proposed range replacement returned by the backend.
type Modification struct {
	From    int    `json:"from"`
	To      int    `json:"to"`
	NewText string `json:"newText"`
}

// ModificationResponse is the parsed result of a modification request.
// Exactly one of Modifications or ReplacementText is populated: models
// either return targeted range edits or a whole replacement for the
// selection, which the caller diffs into range edits.
type ModificationResponse struct {
	Modifications   []Modification
	ReplacementText string
}

// Provider is the completion/modification backend interface.
type Provider interface {
	// Name returns the provider's identifier ("anthropic", "openai",
	// "gemini").
	Name() string

	// RequestCompletion asks for a ghost-text continuation of the text
	// before the caret.
	RequestCompletion(ctx context.Context, textBeforeCaret, documentContext string) (string, error)

	// RequestModifications asks for range edits satisfying the user's
	// instruction over the given selections.
	RequestModifications(ctx context.Context, message, documentContext string, selections []Selection) (*ModificationResponse, error)
}

// Options configures provider construction.
type Options struct {
	// Provider selects the backend: "anthropic", "openai", or "gemini".
	Provider string

	// Model is the provider-specific model identifier.
	Model string

	// APIKey authenticates with the backend.
	APIKey string

	// Logger receives request/response diagnostics. Defaults to the
	// null logger.
	Logger *logging.Logger
}

// New constructs the provider selected by the options.
func New(opts Options) (Provider, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Logger == nil {
		opts.Logger = logging.Null
	}

	switch opts.Provider {
	case "anthropic":
		return newAnthropicProvider(opts), nil
	case "openai":
		return newOpenAIProvider(opts), nil
	case "gemini":
		return newGeminiProvider(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}
