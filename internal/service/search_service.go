package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sublethub/sublethub-backend/internal/common"
	"github.com/sublethub/sublethub-backend/internal/domain"
	"github.com/sublethub/sublethub-backend/internal/repository"
	"github.com/sublethub/sublethub-backend/pkg/cache"
	"github.com/sublethub/sublethub-backend/pkg/logger"
)

const featuredLimit = 6

// SearchService listing search and featured feed
type SearchService interface {
	Search(ctx context.Context, params *repository.SearchParams) ([]*domain.ListingListItem, *common.Meta, error)
	Featured(ctx context.Context) ([]*domain.ListingListItem, error)
}

type searchService struct {
	listingRepo repository.ListingRepository
	cache       cache.Service
}

// NewSearchService creates a new SearchService
func NewSearchService(listingRepo repository.ListingRepository, cacheSvc cache.Service) SearchService {
	return &searchService{
		listingRepo: listingRepo,
		cache:       cacheSvc,
	}
}

// searchPage the cached shape of one result page
type searchPage struct {
	Items []*domain.ListingListItem `json:"items"`
	Meta  *common.Meta              `json:"meta"`
}

func (s *searchService) Search(ctx context.Context, params *repository.SearchParams) ([]*domain.ListingListItem, *common.Meta, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit)
	if params.Sort == "" {
		params.Sort = repository.SortNewest
	}

	key := searchCacheKey(params)
	var cached searchPage
	if err := s.cache.GetSearch(ctx, key, &cached); err == nil {
		return cached.Items, cached.Meta, nil
	}

	listings, total, err := s.listingRepo.Search(params)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	items := make([]*domain.ListingListItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, l.ToListItem(now))
	}
	meta := &common.Meta{Page: params.Page, Limit: params.Limit, Total: total}

	if err := s.cache.SetSearch(ctx, key, &searchPage{Items: items, Meta: meta}); err != nil {
		logger.Get().Warn().Err(err).Msg("search page cache write failed")
	}
	return items, meta, nil
}

func (s *searchService) Featured(ctx context.Context) ([]*domain.ListingListItem, error) {
	key := cache.PrefixFeatured + "home"
	var cached []*domain.ListingListItem
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	listings, err := s.listingRepo.Featured(featuredLimit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]*domain.ListingListItem, 0, len(listings))
	for _, l := range listings {
		items = append(items, l.ToListItem(now))
	}

	if err := s.cache.Set(ctx, key, items, cache.TTLFeatured); err != nil {
		logger.Get().Warn().Err(err).Msg("featured cache write failed")
	}
	return items, nil
}

// searchCacheKey derives a stable key from the normalized params.
func searchCacheKey(p *repository.SearchParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "loc=%s|", strings.ToLower(p.Location))
	if p.LeaseStart != nil {
		fmt.Fprintf(&b, "ls=%s|", p.LeaseStart.Format("2006-01-02"))
	}
	if p.LeaseEnd != nil {
		fmt.Fprintf(&b, "le=%s|", p.LeaseEnd.Format("2006-01-02"))
	}
	if p.Duration != nil {
		fmt.Fprintf(&b, "dur=%s|", *p.Duration)
	}
	if p.Beds != nil {
		fmt.Fprintf(&b, "beds=%d,%t|", *p.Beds, p.BedsAtLeast)
	}
	if p.MinRent != nil {
		fmt.Fprintf(&b, "min=%.2f|", *p.MinRent)
	}
	if p.MaxRent != nil {
		fmt.Fprintf(&b, "max=%.2f|", *p.MaxRent)
	}
	if p.ListingType != nil {
		fmt.Fprintf(&b, "type=%s|", *p.ListingType)
	}
	fmt.Fprintf(&b, "sort=%s|p=%d|l=%d", p.Sort, p.Page, p.Limit)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
