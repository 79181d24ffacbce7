package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

type anthropicBackend struct {
	client anthropic.Client
	model  string
}

func newAnthropicBackend(settings Settings, httpClient *http.Client) *anthropicBackend {
	return &anthropicBackend{
		client: anthropic.NewClient(
			option.WithAPIKey(settings.APIKey),
			option.WithBaseURL(anthropicBaseURL(settings.BaseURL)),
			option.WithHTTPClient(httpClient),
			// The transcript barrier has its own deadline; retries would only eat into it.
			option.WithMaxRetries(0),
		),
		model: settings.Model,
	}
}

// anthropicBaseURL turns a configured ".../v1" endpoint into the SDK's root,
// since the SDK adds "v1/messages" itself.
func anthropicBaseURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/"
}

func (b *anthropicBackend) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &Error{Kind: KindAPI, Provider: "Anthropic", Status: apiErr.StatusCode, Message: anthropicErrorMessage(apiErr), Err: err}
		}
		return "", classifyTransport(err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", parseError("Empty response")
}

// anthropicErrorMessage prefers the API's error.message over the raw body.
func anthropicErrorMessage(apiErr *anthropic.Error) string {
	raw := strings.TrimSpace(apiErr.RawJSON())
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if raw != "" && json.Unmarshal([]byte(raw), &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if raw != "" {
		return raw
	}
	return http.StatusText(apiErr.StatusCode)
}
