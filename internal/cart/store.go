package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Store is the cart of one browsing session. Every mutation rewrites the
// whole snapshot under key while holding the lock, so the stored snapshot
// always reflects the latest mutation.
type Store struct {
	mu      sync.Mutex
	key     string
	storage Storage
	items   []Item
	reset   bool
}

// Open loads the snapshot stored under key. A missing snapshot yields an
// empty cart; a malformed one yields an empty cart with Reset set.
func Open(ctx context.Context, storage Storage, key string) *Store {
	s := &Store{
		key:     key,
		storage: storage,
		items:   []Item{},
	}

	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		logger.Error("Failed to load cart snapshot", err, map[string]interface{}{
			"key": key,
		})
		return s
	}
	if !ok {
		return s
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("Discarding malformed cart snapshot", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		s.reset = true
		return s
	}

	s.items = normalize(items)
	return s
}

// normalize enforces one entry per id and a quantity floor of 1.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		out = append(out, item)
	}
	return out
}

// Add increments the quantity of an existing entry, leaving its other
// fields untouched, or appends item with quantity 1.
func (s *Store) Add(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		item.Quantity = 1
		s.items = append(s.items, item)
	}
	s.persist(ctx)
}

// Remove deletes the entry with id. Absent ids are ignored.
func (s *Store) Remove(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of id to max(1, quantity).
func (s *Store) UpdateQuantity(ctx context.Context, id int, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	s.items[i].Quantity = quantity
	s.persist(ctx)
}

// Clear empties the cart and deletes its snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear(ctx)
}

// Checkout passes the entries and their total to fn and empties the cart
// only if fn succeeds. The lock is held throughout, so no mutation can land
// between the snapshot and the clear.
func (s *Store) Checkout(ctx context.Context, fn func(items []Item, total decimal.Decimal) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	if err := fn(items, s.total()); err != nil {
		return err
	}
	s.clear(ctx)
	return nil
}

func (s *Store) clear(ctx context.Context) {
	s.items = []Item{}
	if err := s.storage.Delete(ctx, s.key); err != nil {
		logger.Error("Failed to delete cart snapshot", err, map[string]interface{}{
			"key": s.key,
		})
	}
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the number of units across all entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Total is the sum of price times quantity, rounded to 2 places.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

func (s *Store) total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// FormattedTotal renders Total as "$20.00".
func (s *Store) FormattedTotal() string {
	return "$" + s.Total().StringFixed(2)
}

// Reset reports whether a malformed snapshot was discarded when the store
// was opened. The flag is cleared once read.
func (s *Store) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.reset
	s.reset = false
	return r
}

func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the snapshot. Failures are logged; the in-memory cart
// stays authoritative until the next successful write.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		logger.Error("Failed to encode cart snapshot", err, map[string]interface{}{
			"key": s.key,
		})
		return
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		logger.Error("Failed to persist cart snapshot", err, map[string]interface{}{
			"key": s.key,
		})
	}
}
