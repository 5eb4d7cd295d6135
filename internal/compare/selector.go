package compare

import (
	"errors"
	"fmt"

	"github.com/automarket/automarket-backend/internal/app/model"
)

// Capacity is the number of comparison slots.
const Capacity = 3

var ErrSlotOutOfRange = errors.New("comparison slot out of range")

// Attribute is a numeric listing field eligible for best-value highlighting.
type Attribute string

const (
	AttrPrice      Attribute = "price"
	AttrMileage    Attribute = "mileage"
	AttrYear       Attribute = "year"
	AttrEngineSize Attribute = "engine_size"
)

// LowerIsBetter lists the default direction of each highlighted attribute.
var LowerIsBetter = map[Attribute]bool{
	AttrPrice:      true,
	AttrMileage:    true,
	AttrYear:       false,
	AttrEngineSize: false,
}

func (a Attribute) value(v *model.VehicleListing) (int, bool) {
	switch a {
	case AttrPrice:
		return v.Price, true
	case AttrMileage:
		return v.Mileage, true
	case AttrYear:
		return v.Year, true
	case AttrEngineSize:
		return v.EngineSize, true
	}
	return 0, false
}

// Selector holds up to Capacity listings in fixed slots. It is rebuilt per
// request and never persisted.
type Selector struct {
	slots [Capacity]*model.VehicleListing
}

func NewSelector() *Selector {
	return &Selector{}
}

// Select places v in slot, replacing any previous occupant.
func (s *Selector) Select(v *model.VehicleListing, slot int) error {
	if slot < 0 || slot >= Capacity {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	s.slots[slot] = v
	return nil
}

// Remove empties slot.
func (s *Selector) Remove(slot int) error {
	if slot < 0 || slot >= Capacity {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	s.slots[slot] = nil
	return nil
}

// Slots returns the slot array; empty slots are nil.
func (s *Selector) Slots() [Capacity]*model.VehicleListing {
	return s.slots
}

// Populated returns the number of non-empty slots.
func (s *Selector) Populated() int {
	n := 0
	for _, v := range s.slots {
		if v != nil {
			n++
		}
	}
	return n
}

// BestValueIndex returns the slot holding the minimum (lowerIsBetter) or
// maximum value of attr. Ties go to the lowest slot. ok is false when fewer
// than two slots are populated or attr is not numeric.
func (s *Selector) BestValueIndex(attr Attribute, lowerIsBetter bool) (index int, ok bool) {
	if s.Populated() < 2 {
		return -1, false
	}

	best, bestIdx := 0, -1
	for i, v := range s.slots {
		if v == nil {
			continue
		}
		val, numeric := attr.value(v)
		if !numeric {
			return -1, false
		}
		if bestIdx < 0 || (lowerIsBetter && val < best) || (!lowerIsBetter && val > best) {
			best, bestIdx = val, i
		}
	}
	return bestIdx, true
}

// Highlights returns the winning slot of every eligible attribute using the
// default directions. Attributes without a winner are omitted.
func (s *Selector) Highlights() map[Attribute]int {
	out := make(map[Attribute]int, len(LowerIsBetter))
	for attr, lower := range LowerIsBetter {
		if idx, ok := s.BestValueIndex(attr, lower); ok {
			out[attr] = idx
		}
	}
	return out
}

// Candidates returns the listings of all that are not already selected,
// compared by id.
func (s *Selector) Candidates(all []model.VehicleListing) []model.VehicleListing {
	selected := make(map[string]bool, Capacity)
	for _, v := range s.slots {
		if v != nil {
			selected[v.ID] = true
		}
	}

	out := make([]model.VehicleListing, 0, len(all))
	for _, v := range all {
		if !selected[v.ID] {
			out = append(out, v)
		}
	}
	return out
}
