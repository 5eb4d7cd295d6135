package scheduler

import (
	"context"
	"time"

	"github.com/automarket/automarket-backend/internal/cart"
)

// CartEvictionJob drops cart sessions idle for longer than maxIdle from
// memory. Their snapshots stay in durable storage.
func CartEvictionJob(m *cart.Manager, maxIdle time.Duration) Job {
	return func(context.Context) error {
		m.Evict(maxIdle)
		return nil
	}
}
