package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/db"
	"github.com/automarket/automarket-backend/internal/events"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string, accountType model.AccountType) *model.User {
	user := &model.User{Email: email, PasswordHash: "hash", AccountType: accountType, Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func intp(n int) *int { return &n }

const fakeBaseURL = "https://cdn.test/"

// fakeImageStore keeps uploaded objects in memory.
type fakeImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	failAfter int // uploads allowed before failing; <0 never fails
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte), failAfter: -1}
}

func (f *fakeImageStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter == 0 {
		return "", errors.New("s3 unavailable")
	}
	if f.failAfter > 0 {
		f.failAfter--
	}
	f.objects[key] = data
	return fakeBaseURL + key, nil
}

func (f *fakeImageStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageStore) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeBaseURL) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeBaseURL), true
}

func (f *fakeImageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// fakeIndex answers searches with a fixed id list.
type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]model.ListingStatus
	hits    []string
	err     error
	size    int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[string]model.ListingStatus)}
}

func (f *fakeIndex) Index(_ context.Context, v *model.VehicleListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[v.ID] = v.Status
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, size int) ([]string, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.size = size
	return f.hits, int64(len(f.hits)), f.err
}
