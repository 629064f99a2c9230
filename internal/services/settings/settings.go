// Package settings owns the global configuration singleton. The value
// is loaded once at service start and cached; updates go through a
// version compare-and-set and refresh the cache, so the toggle never
// behaves as ambient mutable state.
package settings

import (
	"context"
	"fmt"
	"sync"

	settingsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/settings"
)

type Service struct {
	repo settingsrepo.Settings

	mu      sync.RWMutex
	current settingsrepo.Global
}

func New(repo settingsrepo.Settings) *Service {
	return &Service{repo: repo}
}

// Load reads the stored configuration into the cache. Call once at
// startup before serving traffic.
func (s *Service) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh re-reads the stored configuration.
func (s *Service) Refresh(ctx context.Context) error {
	g, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("refresh settings: %w", err)
	}

	s.mu.Lock()
	s.current = *g
	s.mu.Unlock()

	return nil
}

// Current returns the cached configuration.
func (s *Service) Current() settingsrepo.Global {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// DirectTransfersAllowed reports the cached direct-transfer toggle.
func (s *Service) DirectTransfersAllowed() bool {
	return s.Current().AllowDirectTransfer
}

// SetDirectTransfers updates the toggle against the cached version.
// A concurrent update surfaces as ErrVersionConflict; the caller
// refreshes and retries.
func (s *Service) SetDirectTransfers(ctx context.Context, allow bool) (settingsrepo.Global, error) {
	fromVersion := s.Current().Version

	g, err := s.repo.Update(ctx, allow, fromVersion)
	if err != nil {
		return settingsrepo.Global{}, fmt.Errorf("set direct transfers: %w", err)
	}

	s.mu.Lock()
	s.current = *g
	s.mu.Unlock()

	return *g, nil
}
