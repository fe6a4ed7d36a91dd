package memory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"efficiency_optimizer/pkg/models"
)

// FallbackStore writes to a primary store and diverts to a local one
// when the primary fails. Persistence stays best-effort: an analysis is
// never blocked on the backing database being reachable.
type FallbackStore struct {
	primary Store
	local   *LocalStore
	log     zerolog.Logger
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore wraps primary with a local fallback. A nil primary
// degrades to local-only operation.
func NewFallbackStore(primary Store, local *LocalStore) *FallbackStore {
	if local == nil {
		local = NewLocalStore()
	}
	return &FallbackStore{
		primary: primary,
		local:   local,
		log:     log.With().Str("component", "memory").Logger(),
	}
}

func (s *FallbackStore) Store(ctx context.Context, entry models.MemoryEntry) error {
	if s.primary != nil {
		err := s.primary.Store(ctx, entry)
		if err == nil {
			return nil
		}
		s.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("primary memory store failed, using local fallback")
	}
	return s.local.Store(ctx, entry)
}

func (s *FallbackStore) Query(ctx context.Context, embedding []float32, filter Filter) ([]Match, error) {
	if s.primary != nil {
		matches, err := s.primary.Query(ctx, embedding, filter)
		if err == nil {
			return matches, nil
		}
		s.log.Warn().Err(err).Msg("primary memory query failed, using local fallback")
	}
	return s.local.Query(ctx, embedding, filter)
}

func (s *FallbackStore) List(ctx context.Context, filter Filter) ([]models.MemoryEntry, error) {
	if s.primary != nil {
		entries, err := s.primary.List(ctx, filter)
		if err == nil {
			return entries, nil
		}
		s.log.Warn().Err(err).Msg("primary memory list failed, using local fallback")
	}
	return s.local.List(ctx, filter)
}
