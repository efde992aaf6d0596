package mediator

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/generation"
	"taxdesk/internal/prompt"
)

type stubGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	panicVal any
	prompts  []string
	settings []generation.Settings
}

func (s *stubGenerator) Generate(_ context.Context, p string, st generation.Settings) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, p)
	s.settings = append(s.settings, st)
	s.mu.Unlock()
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	return s.text, s.err
}

func newMediator(t *testing.T, gen generation.Generator) (*Mediator, *prompt.Template) {
	t.Helper()
	tmpl, err := prompt.Default()
	require.NoError(t, err)
	return New(tmpl, gen, SettingsFor(tmpl)), tmpl
}

func TestHandleQuerySuccess(t *testing.T) {
	gen := &stubGenerator{text: "The limit is $1,160,000."}
	m, tmpl := newMediator(t, gen)

	res := m.HandleQuery(context.Background(), "What is the deduction limit?")
	require.True(t, res.OK())
	assert.Equal(t, "The limit is $1,160,000.", res.Text)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, tmpl.Enhance("What is the deduction limit?"), gen.prompts[0])
	assert.Equal(t, generation.Settings{Temperature: 0.7, MaxOutputTokens: 2048}, gen.settings[0])
}

func TestHandleQueryClassification(t *testing.T) {
	tests := []struct {
		name     string
		gen      *stubGenerator
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:     "blocked",
			gen:      &stubGenerator{err: &generation.BlockedError{Reason: "SAFETY"}},
			wantKind: KindBlocked,
			wantMsg:  "Response was blocked due to safety concerns",
		},
		{
			name:     "wrapped blocked",
			gen:      &stubGenerator{err: errors.Wrap(generation.ErrBlocked, "gemini")},
			wantKind: KindBlocked,
			wantMsg:  "Response was blocked due to safety concerns",
		},
		{
			name:     "upstream message passed through",
			gen:      &stubGenerator{err: errors.New("quota exceeded")},
			wantKind: KindUpstream,
			wantMsg:  "quota exceeded",
		},
		{
			name:     "empty upstream message",
			gen:      &stubGenerator{err: errors.New("")},
			wantKind: KindUpstream,
			wantMsg:  "Unknown error",
		},
		{
			name:     "panic",
			gen:      &stubGenerator{panicVal: "nil map write"},
			wantKind: KindServerFault,
			wantMsg:  "nil map write",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newMediator(t, tt.gen)
			res := m.HandleQuery(context.Background(), "q")
			require.False(t, res.OK())
			assert.Empty(t, res.Text)
			assert.Equal(t, tt.wantKind, res.Failure.Kind)
			assert.Equal(t, tt.wantMsg, res.Failure.Message)
			assert.Len(t, tt.gen.prompts, 1, "exactly one upstream attempt")
		})
	}
}

func TestHandleQueryConcurrent(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	m, _ := newMediator(t, gen)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, m.HandleQuery(context.Background(), "q").OK())
		}()
	}
	wg.Wait()
	assert.Len(t, gen.prompts, 16)
}
