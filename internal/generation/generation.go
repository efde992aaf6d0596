// Package generation wraps the upstream text-generation services behind a
// single prompt-in, text-out capability.
package generation

import (
	"context"

	"github.com/pkg/errors"

	"taxdesk/internal/config"
)

// ErrBlocked is returned when the upstream withheld output on content-safety
// grounds.
var ErrBlocked = errors.New("response was blocked due to safety concerns")

// Settings is the fixed generation configuration sent with every call.
type Settings struct {
	Temperature     float32
	MaxOutputTokens int
}

// Generator performs one generation call. Errors other than ErrBlocked are
// returned as produced by the upstream SDK so their text can be surfaced
// verbatim.
type Generator interface {
	Generate(ctx context.Context, prompt string, s Settings) (string, error)
}

// BlockedError carries the upstream reason for a safety block.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return ErrBlocked.Error()
	}
	return ErrBlocked.Error() + " (" + e.Reason + ")"
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// New builds the generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.Config) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GoogleAPIKey, cfg.Model)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	default:
		return nil, errors.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
