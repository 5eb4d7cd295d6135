package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/automarket/automarket-backend/internal/app/model"
)

// Criteria narrows a listing set. Zero values mean "no constraint".
type Criteria struct {
	Search      string                 `json:"search,omitempty"`
	Brand       string                 `json:"brand,omitempty"`
	Model       string                 `json:"model,omitempty"`
	YearMin     *int                   `json:"year_min,omitempty"`
	YearMax     *int                   `json:"year_max,omitempty"`
	PriceMin    *int                   `json:"price_min,omitempty"`
	PriceMax    *int                   `json:"price_max,omitempty"`
	VehicleType string                 `json:"vehicle_type,omitempty"`
	Condition   model.VehicleCondition `json:"condition,omitempty"`
}

// Active reports whether any filter is set.
func (c Criteria) Active() bool {
	return c.Search != "" || c.Brand != "" || c.Model != "" ||
		c.YearMin != nil || c.YearMax != nil ||
		c.PriceMin != nil || c.PriceMax != nil ||
		c.VehicleType != "" || c.Condition != ""
}

// HasActiveFilters is true when a filter or a non-default sort is applied.
func HasActiveFilters(c Criteria, key SortKey) bool {
	return c.Active() || ParseSortKey(string(key)) != SortDefault
}

// ParseCriteria reads criteria and sort key from query parameters:
// search, brand, model, year_min, year_max, price_min, price_max,
// vehicle_type, condition and sort.
func ParseCriteria(q url.Values) (Criteria, SortKey) {
	c := Criteria{
		Search:      strings.TrimSpace(q.Get("search")),
		Brand:       strings.TrimSpace(q.Get("brand")),
		Model:       strings.TrimSpace(q.Get("model")),
		YearMin:     ParseBound(q.Get("year_min")),
		YearMax:     ParseBound(q.Get("year_max")),
		PriceMin:    ParseBound(q.Get("price_min")),
		PriceMax:    ParseBound(q.Get("price_max")),
		VehicleType: strings.TrimSpace(q.Get("vehicle_type")),
		Condition:   model.VehicleCondition(strings.TrimSpace(q.Get("condition"))),
	}
	return c, ParseSortKey(q.Get("sort"))
}

// ParseBound parses the leading integer of s, so "2020abc" is 2020 and
// "1.5e3" is 1. It returns nil when s has no leading digits; such bounds
// are absent, never zero.
func ParseBound(s string) *int {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of int range
		return nil
	}
	return &n
}
