package translation

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// backend performs one completion round trip for a prompt.
type backend interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Client translates text through the configured provider.
type Client struct {
	settings Settings
	backend  backend
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used by every protocol.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// NewClient builds a client for settings. It fails with KindAPIKeyMissing
// when the provider needs a key and none is configured.
func NewClient(ctx context.Context, settings Settings, opts ...Option) (*Client, error) {
	settings.normalize()
	options := clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.httpClient == nil {
		options.httpClient = &http.Client{}
	}

	def := settings.Definition()
	if def.RequiresAPIKey && !settings.HasAPIKey() {
		return nil, &Error{Kind: KindAPIKeyMissing, Provider: def.Name}
	}

	var (
		b   backend
		err error
	)
	switch def.Protocol {
	case ProtocolOpenAI:
		b = newOpenAIBackend(settings, options.httpClient)
	case ProtocolAnthropic:
		b = newAnthropicBackend(settings, options.httpClient)
	case ProtocolGemini:
		b, err = newGeminiBackend(ctx, settings, options.httpClient)
	default:
		return nil, &Error{Kind: KindUnsupportedProvider, Provider: def.Name}
	}
	if err != nil {
		return nil, &Error{Kind: KindInvalidConfig, Provider: def.Name, Message: err.Error(), Err: err}
	}

	client := &Client{settings: settings, backend: b}
	if settings.RateLimitRPS > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(settings.RateLimitRPS), 1)
	}
	return client, nil
}

// Settings returns the resolved settings the client was built from.
func (c *Client) Settings() Settings {
	return c.settings
}

// Translate sends text to the provider and returns the translation. An
// empty target uses the configured target language.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	if c == nil || c.backend == nil {
		return "", &Error{Kind: KindInvalidConfig, Message: "client not initialized"}
	}
	if strings.TrimSpace(target) == "" {
		target = c.settings.TargetLanguage
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", classifyTransport(err)
		}
	}

	out, err := c.backend.complete(ctx, BuildPrompt(text, target))
	if err != nil {
		return "", err
	}
	return out, nil
}

// Enrich implements reasoning.Enricher.
func (c *Client) Enrich(ctx context.Context, text, target string) (string, error) {
	return c.Translate(ctx, text, target)
}

// BuildPrompt returns the instruction sent to the provider.
func BuildPrompt(text, target string) string {
	return fmt.Sprintf(
		"Translate the following text to %s. Keep the original formatting (markdown, code blocks, etc.). Output only the translation, nothing else.\n\n%s",
		target, text,
	)
}
