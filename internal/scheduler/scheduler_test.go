package scheduler

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/automarket/automarket-backend/internal/cart"
	"github.com/automarket/automarket-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://cdn.example.com/"

type fakeObjectStore struct {
	objects   []storage.Object
	deleted   []string
	failOn    string
	listError error
}

func (f *fakeObjectStore) ListObjects(_ context.Context, prefix string) ([]storage.Object, error) {
	return f.objects, f.listError
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if key == f.failOn {
		return errors.New("access denied")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) KeyFromURL(url string) (string, bool) {
	if len(url) <= len(baseURL) || url[:len(baseURL)] != baseURL {
		return "", false
	}
	return url[len(baseURL):], true
}

type fakeRefs []string

func (f fakeRefs) ListImageURLs(context.Context) ([]string, error) { return f, nil }

func TestOrphanImageSweeper_Sweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	store := &fakeObjectStore{objects: []storage.Object{
		{Key: "vehicles/1/kept.jpg", LastModified: old},
		{Key: "vehicles/1/orphan.jpg", LastModified: old},
		{Key: "vehicles/2/fresh.jpg", LastModified: now.Add(-10 * time.Minute)},
		{Key: "vehicles/2/orphan.png", LastModified: old},
	}}
	refs := fakeRefs{baseURL + "vehicles/1/kept.jpg", "https://elsewhere.com/x.jpg"}

	sweeper := NewOrphanImageSweeper(store, refs, "vehicles/", time.Hour)
	sweeper.now = func() time.Time { return now }

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sort.Strings(store.deleted)
	assert.Equal(t, []string{"vehicles/1/orphan.jpg", "vehicles/2/orphan.png"}, store.deleted)
}

func TestOrphanImageSweeper_DeleteFailureContinues(t *testing.T) {
	now := time.Now()
	store := &fakeObjectStore{
		objects: []storage.Object{
			{Key: "vehicles/a.jpg", LastModified: now.Add(-3 * time.Hour)},
			{Key: "vehicles/b.jpg", LastModified: now.Add(-3 * time.Hour)},
		},
		failOn: "vehicles/a.jpg",
	}

	n, err := NewOrphanImageSweeper(store, fakeRefs{}, "vehicles/", time.Hour).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"vehicles/b.jpg"}, store.deleted)
}

func TestOrphanImageSweeper_ListError(t *testing.T) {
	store := &fakeObjectStore{listError: errors.New("timeout")}
	err := NewOrphanImageSweeper(store, fakeRefs{}, "vehicles/", time.Hour).Job()(context.Background())
	assert.Error(t, err)
	assert.Empty(t, store.deleted)
}

func TestScheduler_Register(t *testing.T) {
	s := New()
	defer s.Stop()

	require.NoError(t, s.Register("noop", "@every 1h", func(context.Context) error { return nil }))
	assert.Error(t, s.Register("bad", "not a spec", func(context.Context) error { return nil }))
	assert.Equal(t, 1, s.Len())
}

func TestCartEvictionJob(t *testing.T) {
	m := cart.NewManager(cart.NewMemoryStorage(), "cart:")
	_, release := m.Acquire(context.Background(), "s1")
	release()
	require.Equal(t, 1, m.Len())

	require.NoError(t, CartEvictionJob(m, -time.Second)(context.Background()))
	assert.Equal(t, 0, m.Len())
}
