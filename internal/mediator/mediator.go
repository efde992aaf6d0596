// Package mediator turns a raw question into one upstream generation call and
// classifies the outcome.
package mediator

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"taxdesk/internal/generation"
	"taxdesk/internal/prompt"
)

type ErrorKind string

const (
	KindBlocked     ErrorKind = "blocked"
	KindUpstream    ErrorKind = "upstream_error"
	KindServerFault ErrorKind = "server_fault"
)

const (
	BlockedMessage = "Response was blocked due to safety concerns"
	UnknownMessage = "Unknown error"
)

type Failure struct {
	Kind    ErrorKind
	Message string
}

// Result holds either the generated text or a Failure, never both.
type Result struct {
	Text    string
	Failure *Failure
}

func (r Result) OK() bool { return r.Failure == nil }

func success(text string) Result { return Result{Text: text} }

func failure(kind ErrorKind, msg string) Result {
	if msg == "" {
		msg = UnknownMessage
	}
	return Result{Failure: &Failure{Kind: kind, Message: msg}}
}

// Mediator is stateless; one instance serves all requests concurrently.
type Mediator struct {
	tmpl     *prompt.Template
	gen      generation.Generator
	settings generation.Settings
}

func New(tmpl *prompt.Template, gen generation.Generator, settings generation.Settings) *Mediator {
	return &Mediator{tmpl: tmpl, gen: gen, settings: settings}
}

// SettingsFor derives the fixed generation configuration from a template.
func SettingsFor(tmpl *prompt.Template) generation.Settings {
	return generation.Settings{Temperature: tmpl.Temperature(), MaxOutputTokens: tmpl.MaxTokens()}
}

// HandleQuery makes exactly one upstream attempt. It has no timeout of its
// own; ctx is the only bound.
func (m *Mediator) HandleQuery(ctx context.Context, rawPrompt string) (res Result) {
	enhanced := m.tmpl.Enhance(rawPrompt)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("generation panicked")
			res = failure(KindServerFault, fmt.Sprint(p))
		}
	}()

	text, err := m.gen.Generate(ctx, enhanced, m.settings)
	took := time.Since(start)
	if err != nil {
		if errors.Is(err, generation.ErrBlocked) {
			log.Warn().Err(err).Dur("took", took).Msg("generation blocked")
			return failure(KindBlocked, BlockedMessage)
		}
		log.Error().Err(err).Dur("took", took).Msg("error generating response")
		return failure(KindUpstream, err.Error())
	}
	log.Debug().Dur("took", took).Int("prompt_len", len(enhanced)).Int("response_len", len(text)).Msg("generated response")
	return success(text)
}
