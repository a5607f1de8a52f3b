package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewStore(context.Background(), Config{
		Bucket:          "farm-media",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return s
}

func TestStore_Put(t *testing.T) {
	var gotPath, gotBody, gotAuth, gotType string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	})

	key, err := s.Put(context.Background(), "products", "user-1", []byte("jpegdata"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "products/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "/farm-media/"+key, gotPath)
	assert.Contains(t, gotAuth, "AWS4-HMAC-SHA256")
	assert.Equal(t, "image/jpeg", gotType)
	assert.Contains(t, gotBody, "jpegdata")
}

func TestStore_PutRejected(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<Error>AccessDenied</Error>"))
	})

	_, err := s.Put(context.Background(), "ids", "user-1", []byte("x"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
