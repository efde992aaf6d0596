package generation

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI generates text with an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends the prompt as a single user message; the role framing is
// already part of the prompt text.
func (o *OpenAI) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return completionText(resp)
}

func completionText(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", &BlockedError{Reason: string(choice.FinishReason)}
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", errors.New("empty response from model")
	}
	return choice.Message.Content, nil
}
