package service

import (
	"context"
	"errors"
	"strings"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/internal/catalog"
	"github.com/automarket/automarket-backend/internal/compare"
	"github.com/automarket/automarket-backend/pkg/logger"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 100
)

var ErrTooManySlots = errors.New("at most 3 vehicles can be compared")

// Comparison is the rebuilt selector state for one request.
type Comparison struct {
	Slots      [compare.Capacity]*model.VehicleListing `json:"slots"`
	Highlights map[compare.Attribute]int              `json:"highlights"`
	Candidates []model.VehicleListing                 `json:"candidates"`
}

type CatalogService interface {
	Browse(ctx context.Context, criteria catalog.Criteria, sortKey catalog.SortKey) ([]model.VehicleListing, error)
	Search(ctx context.Context, query string, limit int) ([]model.VehicleListing, error)
	Compare(ctx context.Context, slotIDs []string) (*Comparison, error)
}

type catalogService struct {
	listingRepo repository.ListingRepository
	index       SearchIndex
}

// NewCatalogService builds the read side of the marketplace. index may be
// nil, in which case Search filters in memory.
func NewCatalogService(listingRepo repository.ListingRepository, index SearchIndex) CatalogService {
	return &catalogService{
		listingRepo: listingRepo,
		index:       index,
	}
}

// Browse runs every active listing through the filter/sort engine.
func (s *catalogService) Browse(ctx context.Context, criteria catalog.Criteria, sortKey catalog.SortKey) ([]model.VehicleListing, error) {
	listings, err := s.listingRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	result := catalog.Apply(listings, criteria, sortKey)
	logger.Debug("Catalog browsed", map[string]interface{}{
		"total":          len(listings),
		"matched":        len(result),
		"sort":           sortKey,
		"filters_active": catalog.HasActiveFilters(criteria, sortKey),
	})
	return result, nil
}

func (s *catalogService) Search(ctx context.Context, query string, limit int) ([]model.VehicleListing, error) {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	if s.index != nil && query != "" {
		result, err := s.searchIndex(ctx, query, limit)
		if err == nil {
			return result, nil
		}
		logger.Warn("Search index unavailable, falling back to catalog filter", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, err := s.Browse(ctx, catalog.Criteria{Search: query}, catalog.SortDefault)
	if err != nil {
		return nil, err
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// searchIndex returns active listings in index relevance order.
func (s *catalogService) searchIndex(ctx context.Context, query string, limit int) ([]model.VehicleListing, error) {
	ids, _, err := s.index.Search(ctx, query, 0, limit)
	if err != nil {
		return nil, err
	}

	found, err := s.listingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.VehicleListing, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}

	result := make([]model.VehicleListing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok && l.IsActive() {
			result = append(result, l)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// Compare fills the slots with the given listing ids. Empty, unknown or
// inactive ids leave their slot empty.
func (s *catalogService) Compare(ctx context.Context, slotIDs []string) (*Comparison, error) {
	if len(slotIDs) > compare.Capacity {
		return nil, ErrTooManySlots
	}

	all, err := s.listingRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.VehicleListing, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	sel := compare.NewSelector()
	for slot, id := range slotIDs {
		if v, ok := byID[strings.TrimSpace(id)]; ok {
			if err := sel.Select(v, slot); err != nil {
				return nil, err
			}
		}
	}

	return &Comparison{
		Slots:      sel.Slots(),
		Highlights: sel.Highlights(),
		Candidates: sel.Candidates(all),
	}, nil
}
