// Package controller holds the input surface state: the question being typed,
// the last answer, the last error and whether a request is in flight.
package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"taxdesk/internal/client"
)

const (
	UnreachableMessage = "Unable to connect to the server. Please make sure the server is running."
	FallbackMessage    = "Failed to get response from server"
	UnexpectedMessage  = "An unexpected error occurred"
)

// Querier performs one round trip to the query endpoint.
type Querier interface {
	Query(ctx context.Context, prompt string) (string, error)
}

// State is a snapshot of the UI. An empty Error means no error.
type State struct {
	Prompt   string
	Response string
	Loading  bool
	Error    string
}

// Controller is safe for concurrent use. Overlapping Submits are not
// serialised: each settles independently and the last one to arrive wins.
type Controller struct {
	q Querier

	mu       sync.Mutex
	state    State
	onChange func(State)
}

func New(q Querier) *Controller {
	return &Controller{q: q}
}

// OnChange registers fn to be called with the new state after every
// transition. fn runs on the goroutine that made the change.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SetPrompt(text string) {
	c.update(func(s *State) { s.Prompt = text })
}

// Submit sends promptText and blocks until the answer is applied. A blank
// prompt is ignored and false is returned without touching any state.
func (c *Controller) Submit(ctx context.Context, promptText string) bool {
	if strings.TrimSpace(promptText) == "" {
		return false
	}
	c.update(func(s *State) {
		s.Loading = true
		s.Error = ""
	})

	text, err := c.q.Query(ctx, promptText)

	c.update(func(s *State) {
		if err != nil {
			log.Debug().Err(err).Msg("query failed")
			s.Error = Describe(err)
			s.Response = ""
		} else {
			s.Response = text
			s.Error = ""
		}
		s.Loading = false
	})
	return true
}

// Clear resets the prompt, answer and error. A request in flight is not
// cancelled and will still write its result when it settles.
func (c *Controller) Clear() {
	c.update(func(s *State) {
		s.Prompt = ""
		s.Response = ""
		s.Error = ""
	})
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	snap, cb := c.state, c.onChange
	c.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

// Describe maps a Query error to the message shown to the user.
func Describe(err error) string {
	var te *client.TransportError
	if errors.As(err, &te) {
		return UnreachableMessage
	}
	var se *client.StatusError
	if errors.As(err, &se) {
		if se.Details != "" {
			return se.Details
		}
		return FallbackMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnexpectedMessage
}
