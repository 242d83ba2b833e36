package service

import (
	"context"
	"time"

	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/pkg/cache"
	"github.com/sublethub/sublethub-backend/pkg/logger"
)

// SweeperService demotes stale active listings to pending so owners
// have to bump or update them to reappear in search.
type SweeperService interface {
	// Sweep demotes every active listing untouched since the staleness
	// window and returns how many were demoted.
	Sweep(ctx context.Context) (int64, error)
}

type sweeperService struct {
	listingRepo repository.ListingRepository
	cache       cache.Service
	staleAfter  time.Duration
	now         func() time.Time
}

// NewSweeperService creates a new SweeperService
func NewSweeperService(listingRepo repository.ListingRepository, cacheSvc cache.Service, staleAfter time.Duration) SweeperService {
	return &sweeperService{
		listingRepo: listingRepo,
		cache:       cacheSvc,
		staleAfter:  staleAfter,
		now:         time.Now,
	}
}

func (s *sweeperService) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)

	demoted, err := s.listingRepo.DemoteStale(cutoff)
	if err != nil {
		return 0, err
	}

	if demoted > 0 {
		if err := s.cache.InvalidateSearch(ctx); err != nil {
			logger.Get().Warn().Err(err).Msg("search cache invalidation failed")
		}
	}

	logger.Get().Info().
		Int64("demoted", demoted).
		Time("cutoff", cutoff).
		Msg("stale listing sweep finished")
	return demoted, nil
}
