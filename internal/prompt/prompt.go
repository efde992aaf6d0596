// Package prompt holds the instructional template wrapped around every user
// question and the read-only catalogue of example questions.
package prompt

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSpec []byte

const (
	defaultTemperature float32 = 0.7
	defaultMaxTokens           = 2048
)

type Spec struct {
	Role       string `yaml:"role"`
	Compliance string `yaml:"compliance"`
	Style      struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
	Prompts []string `yaml:"prompts"`
}

// Template turns a raw question into the prompt sent upstream. It is built
// once at startup and never mutated.
type Template struct {
	role        string
	compliance  string
	temperature float32
	maxTokens   int
	catalogue   []string
}

// Default returns the template compiled into the binary.
func Default() (*Template, error) {
	return parse(defaultSpec)
}

// Load reads a spec from path, falling back to the embedded one when path is
// empty.
func Load(path string) (*Template, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read prompt spec")
	}
	t, err := parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "prompt spec %s", path)
	}
	return t, nil
}

func parse(b []byte) (*Template, error) {
	var spec Spec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, errors.Wrap(err, "parse prompt spec")
	}
	if strings.TrimSpace(spec.Role) == "" {
		return nil, errors.New("prompt spec has no role")
	}
	temp := spec.Style.Temperature
	if temp <= 0 {
		temp = defaultTemperature
	}
	maxTok := spec.Style.MaxTokens
	if maxTok <= 0 {
		maxTok = defaultMaxTokens
	}
	return &Template{
		role:        spec.Role,
		compliance:  spec.Compliance,
		temperature: temp,
		maxTokens:   maxTok,
		catalogue:   append([]string(nil), spec.Prompts...),
	}, nil
}

// Enhance wraps raw in the role framing and compliance note. The raw text is
// passed through as-is: no trimming, escaping or length cap.
func (t *Template) Enhance(raw string) string {
	var b strings.Builder
	b.Grow(len(t.role) + len(raw) + len(t.compliance) + 2)
	b.WriteString(t.role)
	b.WriteString(raw)
	if t.compliance != "" {
		b.WriteString("\n\n")
		b.WriteString(t.compliance)
	}
	return b.String()
}

func (t *Template) Temperature() float32 { return t.temperature }
func (t *Template) MaxTokens() int       { return t.maxTokens }

// Catalogue returns a copy of the example questions.
func (t *Template) Catalogue() []string {
	return append([]string{}, t.catalogue...)
}
