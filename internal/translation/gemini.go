package translation

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
	model  string
}

func newGeminiBackend(ctx context.Context, settings Settings, httpClient *http.Client) (*geminiBackend, error) {
	cc := &genai.ClientConfig{
		APIKey:     settings.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if settings.BaseURL != ProviderGemini.Definition().DefaultBaseURL {
		cc.HTTPOptions.BaseURL = settings.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &geminiBackend{client: client, model: settings.Model}, nil
}

func (b *geminiBackend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), &genai.GenerateContentConfig{
		CandidateCount: 1,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &Error{Kind: KindAPI, Provider: "Gemini", Status: apiErr.Code, Message: apiErr.Message, Err: err}
		}
		return "", classifyTransport(err)
	}
	text := resp.Text()
	if text == "" {
		return "", parseError("Empty response")
	}
	return text, nil
}
