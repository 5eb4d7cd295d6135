package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/automarket/automarket-backend/internal/storage"
	"github.com/automarket/automarket-backend/pkg/logger"
)

// ObjectStore is the part of object storage the sweeper needs.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]storage.Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// ImageReferences lists every image URL still referenced by a listing.
type ImageReferences interface {
	ListImageURLs(ctx context.Context) ([]string, error)
}

// OrphanImageSweeper deletes uploaded listing images that no listing
// references, e.g. when a create failed after its uploads succeeded.
type OrphanImageSweeper struct {
	store  ObjectStore
	refs   ImageReferences
	prefix string
	grace  time.Duration
	now    func() time.Time
}

func NewOrphanImageSweeper(store ObjectStore, refs ImageReferences, prefix string, grace time.Duration) *OrphanImageSweeper {
	return &OrphanImageSweeper{
		store:  store,
		refs:   refs,
		prefix: prefix,
		grace:  grace,
		now:    time.Now,
	}
}

// Sweep removes unreferenced objects older than the grace period and
// returns how many were deleted. Objects inside the grace period may belong
// to a create that is still in flight.
func (s *OrphanImageSweeper) Sweep(ctx context.Context) (int, error) {
	urls, err := s.refs.ListImageURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphan sweep: list references: %w", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if key, ok := s.store.KeyFromURL(u); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := s.store.ListObjects(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("orphan sweep: list objects: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	deleted := 0
	for _, obj := range objects {
		if !strings.HasPrefix(obj.Key, s.prefix) || obj.LastModified.After(cutoff) {
			continue
		}
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			logger.Warn("Failed to delete orphaned image", map[string]interface{}{
				"key":   obj.Key,
				"error": err.Error(),
			})
			continue
		}
		deleted++
	}

	if deleted > 0 {
		logger.Info("Orphaned images removed", map[string]interface{}{
			"deleted": deleted,
			"scanned": len(objects),
		})
	}
	return deleted, nil
}

// Job adapts Sweep for Register.
func (s *OrphanImageSweeper) Job() Job {
	return func(ctx context.Context) error {
		_, err := s.Sweep(ctx)
		return err
	}
}
