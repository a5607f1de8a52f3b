package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotatingTokens returns a stale token until Refresh is called.
type rotatingTokens struct {
	current   string
	next      string
	refreshes int
}

func (r *rotatingTokens) Token(ctx context.Context) (string, error) { return r.current, nil }

func (r *rotatingTokens) Refresh(ctx context.Context) (string, error) {
	r.refreshes++
	r.current = r.next
	return r.current, nil
}

func (r *rotatingTokens) Rotate(ctx context.Context, token string) error {
	r.current = token
	return nil
}

const expiredBody = `{"error":{"message":"Error validating access token","type":"OAuthException","code":190,"error_subcode":463,"fbtrace_id":"A1"}}`

func newTestClient(srv *httptest.Server, tokens *rotatingTokens) *Client {
	return NewClient(Config{BaseURL: srv.URL, APIVersion: "v21.0", PhoneNumberID: "123"}, tokens)
}

func TestClientSend(t *testing.T) {
	payload, _ := json.Marshal(NewText("15550001111", "hi"))

	t.Run("posts payload with bearer token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v21.0/123/messages", r.URL.Path)
			assert.Equal(t, "Bearer good", r.Header.Get("Authorization"))
			var m Message
			require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
			assert.Equal(t, "whatsapp", m.MessagingProduct)
			w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
		}))
		defer srv.Close()

		resp, err := newTestClient(srv, &rotatingTokens{current: "good"}).Send(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "wamid.1", resp.MessageID())
	})

	t.Run("retries once with refreshed token on expiry", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Header.Get("Authorization") == "Bearer stale" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(expiredBody))
				return
			}
			w.Write([]byte(`{"messages":[{"id":"wamid.2"}]}`))
		}))
		defer srv.Close()

		tokens := &rotatingTokens{current: "stale", next: "fresh"}
		resp, err := newTestClient(srv, tokens).Send(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "wamid.2", resp.MessageID())
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 1, tokens.refreshes)
	})

	t.Run("surfaces failure when refreshed token is also expired", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(expiredBody))
		}))
		defer srv.Close()

		tokens := &rotatingTokens{current: "stale", next: "still-stale"}
		_, err := newTestClient(srv, tokens).Send(context.Background(), payload)
		require.Error(t, err)

		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.True(t, apiErr.TokenExpired())
		assert.Equal(t, 463, apiErr.Subcode)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Re-engagement message","code":131047,"error_subcode":2494010}}`))
		}))
		defer srv.Close()

		tokens := &rotatingTokens{current: "good"}
		_, err := newTestClient(srv, tokens).Send(context.Background(), payload)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, CodeReengagement, apiErr.Code)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 0, tokens.refreshes)
	})

	t.Run("non json error body still yields api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv, &rotatingTokens{current: "good"}).Send(context.Background(), payload)
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})
}

func TestClientDownloadMedia(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v21.0/media-1":
			w.Write([]byte(`{"url":"` + srvURL + `/files/media-1","mime_type":"image/jpeg"}`))
		case "/files/media-1":
			w.Write([]byte("jpeg-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	media, err := newTestClient(srv, &rotatingTokens{current: "good"}).DownloadMedia(context.Background(), "media-1")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", media.MimeType)
	assert.Equal(t, []byte("jpeg-bytes"), media.Data)
}
