package catalog

import (
	"strings"

	"github.com/automarket/automarket-backend/internal/app/model"
)

// Apply filters listings by c and sorts the result by key. The input is
// not modified. An empty result is a valid outcome.
func Apply(listings []model.VehicleListing, c Criteria, key SortKey) []model.VehicleListing {
	return Sort(Filter(listings, c), key)
}

// Filter keeps the listings that satisfy every set criterion, in input order.
func Filter(listings []model.VehicleListing, c Criteria) []model.VehicleListing {
	out := make([]model.VehicleListing, 0, len(listings))
	for i := range listings {
		if c.Matches(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Matches reports whether v satisfies every set criterion.
func (c Criteria) Matches(v *model.VehicleListing) bool {
	if c.Search != "" && !containsFold(v.Brand, c.Search) && !containsFold(v.Model, c.Search) {
		return false
	}
	if c.Brand != "" && !containsFold(v.Brand, c.Brand) {
		return false
	}
	if c.Model != "" && !containsFold(v.Model, c.Model) {
		return false
	}
	if c.YearMin != nil && v.Year < *c.YearMin {
		return false
	}
	if c.YearMax != nil && v.Year > *c.YearMax {
		return false
	}
	if c.PriceMin != nil && v.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && v.Price > *c.PriceMax {
		return false
	}
	if c.VehicleType != "" && v.VehicleType != c.VehicleType {
		return false
	}
	if c.Condition != "" && v.Condition != c.Condition {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
