package translation

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const openAITemperature = 0.3

type openAIBackend struct {
	client   *openai.Client
	model    string
	provider string
}

func newOpenAIBackend(settings Settings, httpClient *http.Client) *openAIBackend {
	cfg := openai.DefaultConfig(settings.APIKey)
	cfg.BaseURL = settings.BaseURL
	cfg.HTTPClient = httpClient
	return &openAIBackend{
		client:   openai.NewClientWithConfig(cfg),
		model:    settings.Model,
		provider: settings.Definition().Name,
	}
}

func (b *openAIBackend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: openAITemperature,
	})
	if err != nil {
		return "", b.classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", parseError("Empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *openAIBackend) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindAPI, Provider: b.provider, Status: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if errors.Is(reqErr.Err, context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Provider: b.provider, Err: err}
		}
		if reqErr.HTTPStatusCode != 0 {
			return &Error{Kind: KindAPI, Provider: b.provider, Status: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
		}
	}
	return classifyTransport(err)
}
