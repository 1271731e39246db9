package riskconfig

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// SettingsStore layers a cache over a durable repository. Writes go to the
// repository first, then the cache. Reads try the cache and fall back to the
// repository, populating the cache on a hit. Either layer may be nil.
type SettingsStore struct {
	repo     domain.Store
	cache    domain.Store
	cacheTTL time.Duration
}

// NewSettingsStore returns a nil domain.Store when both layers are nil, so
// the result can be handed to NewEditor without a typed-nil check.
func NewSettingsStore(repo, cache domain.Store, cacheTTL time.Duration) domain.Store {
	if repo == nil && cache == nil {
		return nil
	}
	return &SettingsStore{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Get reads a key, returning nil, nil when it is absent.
func (s *SettingsStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("settings cache read failed", "key", key, "error", err)
		} else if data != nil {
			return data, nil
		}
	}
	if s.repo == nil {
		return nil, nil
	}

	data, err := s.repo.Get(ctx, key)
	if err != nil || data == nil {
		return data, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			slog.Warn("settings cache fill failed", "key", key, "error", err)
		}
	}
	return data, nil
}

// Set writes a key to both layers.
func (s *SettingsStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.repo != nil {
		if err := s.repo.Set(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	if s.cache == nil {
		return nil
	}
	cacheTTL := s.cacheTTL
	if ttl > 0 && (cacheTTL == 0 || ttl < cacheTTL) {
		cacheTTL = ttl
	}
	if err := s.cache.Set(ctx, key, value, cacheTTL); err != nil {
		if s.repo == nil {
			return err
		}
		slog.Warn("settings cache write failed", "key", key, "error", err)
	}
	return nil
}

// Delete removes a key from both layers.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Delete(ctx, key))
	}
	if s.repo != nil {
		errs = append(errs, s.repo.Delete(ctx, key))
	}
	return errors.Join(errs...)
}

// Ping checks both layers.
func (s *SettingsStore) Ping(ctx context.Context) error {
	var errs []error
	if s.repo != nil {
		errs = append(errs, s.repo.Ping(ctx))
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Ping(ctx))
	}
	return errors.Join(errs...)
}

// Close closes both layers.
func (s *SettingsStore) Close() error {
	var errs []error
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	if s.repo != nil {
		errs = append(errs, s.repo.Close())
	}
	return errors.Join(errs...)
}
