package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string]string
	deletes []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/test-bucket/")
	switch {
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.puts[key] = string(body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		f.deletes = append(f.deletes, key)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>test-bucket</Name>
  <Prefix>vehicles/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>vehicles/1/a.jpg</Key><LastModified>2026-01-01T00:00:00.000Z</LastModified><Size>10</Size></Contents>
  <Contents><Key>vehicles/2/b.png</Key><LastModified>2026-02-01T00:00:00.000Z</LastModified><Size>20</Size></Contents>
</ListBucketResult>`)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestStorage(t *testing.T, baseURL string) (*S3Storage, *fakeS3) {
	fake := &fakeS3{puts: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s := NewS3Storage("sa-east-1", "test-bucket", "key", "secret", baseURL, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
	})
	return s, fake
}

func TestS3Storage_UploadAndDelete(t *testing.T) {
	s, fake := newTestStorage(t, "https://cdn.example.com/")
	ctx := context.Background()

	url, err := s.Upload(ctx, "vehicles/1/photo.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/vehicles/1/photo.jpg", url)
	assert.Contains(t, fake.puts["vehicles/1/photo.jpg"], "jpeg-bytes")

	require.NoError(t, s.Delete(ctx, "vehicles/1/photo.jpg"))
	assert.Equal(t, []string{"vehicles/1/photo.jpg"}, fake.deletes)
}

func TestS3Storage_ListObjects(t *testing.T) {
	s, _ := newTestStorage(t, "")

	objects, err := s.ListObjects(context.Background(), "vehicles/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "vehicles/1/a.jpg", objects[0].Key)
	assert.Equal(t, int64(20), objects[1].Size)
	assert.Equal(t, 2026, objects[1].LastModified.Year())
}

func TestS3Storage_KeyFromURL(t *testing.T) {
	s, _ := newTestStorage(t, "https://cdn.example.com")

	key, ok := s.KeyFromURL("https://cdn.example.com/vehicles/1/a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "vehicles/1/a.jpg", key)

	_, ok = s.KeyFromURL("https://elsewhere.example.com/vehicles/1/a.jpg")
	assert.False(t, ok)
	_, ok = s.KeyFromURL("https://cdn.example.com/")
	assert.False(t, ok)

	direct, _ := newTestStorage(t, "")
	assert.Equal(t, "https://test-bucket.s3.sa-east-1.amazonaws.com/k.jpg", direct.URLForKey("k.jpg"))
}

func TestS3Storage_PresignedURL(t *testing.T) {
	s, _ := newTestStorage(t, "https://cdn.example.com")

	resp, err := s.GeneratePresignedURLWithFolder(context.Background(), "Photo.JPG", "image/jpeg", "vehicles/7")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "vehicles/7/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Equal(t, "https://cdn.example.com/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateContentType("image/PNG", ImageContentTypes))
	assert.ErrorIs(t, ValidateContentType("application/pdf", ImageContentTypes), ErrContentTypeNotAllowed)
	assert.NoError(t, ValidateFileSize(10, 10))
	assert.Error(t, ValidateFileSize(11, 10))
}
