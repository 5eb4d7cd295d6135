package catalog

import (
	"sort"

	"github.com/automarket/automarket-backend/internal/app/model"
)

type SortKey string

const (
	SortDefault    SortKey = "default" // newest first
	SortPriceDesc  SortKey = "price_desc"
	SortPriceAsc   SortKey = "price_asc"
	SortYearDesc   SortKey = "year_desc"
	SortYearAsc    SortKey = "year_asc"
	SortMileageAsc SortKey = "mileage_asc"
)

// ParseSortKey maps unknown or empty keys to SortDefault.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortPriceDesc, SortPriceAsc, SortYearDesc, SortYearAsc, SortMileageAsc:
		return k
	}
	return SortDefault
}

func less(key SortKey) func(a, b *model.VehicleListing) bool {
	switch key {
	case SortPriceDesc:
		return func(a, b *model.VehicleListing) bool { return a.Price > b.Price }
	case SortPriceAsc:
		return func(a, b *model.VehicleListing) bool { return a.Price < b.Price }
	case SortYearDesc:
		return func(a, b *model.VehicleListing) bool { return a.Year > b.Year }
	case SortYearAsc:
		return func(a, b *model.VehicleListing) bool { return a.Year < b.Year }
	case SortMileageAsc:
		return func(a, b *model.VehicleListing) bool { return a.Mileage < b.Mileage }
	}
	return func(a, b *model.VehicleListing) bool { return a.CreatedAt.After(b.CreatedAt) }
}

// Sort returns a stably sorted copy of listings.
func Sort(listings []model.VehicleListing, key SortKey) []model.VehicleListing {
	out := make([]model.VehicleListing, len(listings))
	copy(out, listings)

	cmp := less(ParseSortKey(string(key)))
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(&out[i], &out[j])
	})
	return out
}
