package translation

import (
	"context"
	"sync"
)

// Service is a reconfigurable Enricher. A client that cannot be built is
// kept as an error and reported on each translation instead of failing
// startup, so a missing API key shows up as a failure cell.
type Service struct {
	mu       sync.RWMutex
	settings Settings
	client   *Client
	err      error
	opts     []Option
}

// NewService builds a Service from settings.
func NewService(ctx context.Context, settings Settings, opts ...Option) *Service {
	s := &Service{opts: opts}
	s.Reconfigure(ctx, settings)
	return s
}

// Reconfigure rebuilds the provider client from settings.
func (s *Service) Reconfigure(ctx context.Context, settings Settings) {
	settings.normalize()
	client, err := NewClient(ctx, settings, s.opts...)
	s.mu.Lock()
	s.settings = settings
	s.client = client
	s.err = err
	s.mu.Unlock()
}

// Settings returns the settings last passed to Reconfigure.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Err returns the error from building the current client, if any.
func (s *Service) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Enrich implements reasoning.Enricher.
func (s *Service) Enrich(ctx context.Context, text, target string) (string, error) {
	s.mu.RLock()
	client, err := s.client, s.err
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return client.Translate(ctx, text, target)
}
