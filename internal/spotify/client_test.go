package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playlistJSON = `{
  "items": [
    {"track": {"name": "Espresso", "is_local": false,
      "artists": [{"name": "Sabrina Carpenter"}],
      "album": {"images": [{"url": "https://i.scdn.co/a.jpg"}, {"url": "https://i.scdn.co/b.jpg"}]},
      "external_urls": {"spotify": "https://open.spotify.com/track/1"}}},
    {"track": null},
    {"track": {"name": "Home Demo", "is_local": true, "artists": []}},
    {"track": {"artists": [{"name": "A"}, {"name": "B"}], "album": {"images": []}}}
  ]
}`

type fakeSpotify struct {
	tokens   atomic.Int32
	fetches  atomic.Int32
	status   int
	body     string
	gotQuery string
}

func (f *fakeSpotify) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			f.tokens.Add(1)
			id, secret, ok := r.BasicAuth()
			if !ok {
				assert.NoError(t, r.ParseForm())
				id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
			}
			if id != "id" || secret != "secret" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid_client"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/v1/playlists/top50/tracks":
			f.fetches.Add(1)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			f.gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			if f.status != 0 {
				w.WriteHeader(f.status)
			}
			w.Write([]byte(f.body))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestClient(t *testing.T, f *fakeSpotify, id, secret string) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(Config{
		ClientID:     id,
		ClientSecret: secret,
		PlaylistID:   "top50",
		Market:       "US",
		TokenURL:     srv.URL + "/api/token",
		APIBase:      srv.URL,
	})
}

func TestFetchTrending(t *testing.T) {
	f := &fakeSpotify{body: playlistJSON}
	c := newTestClient(t, f, "id", "secret")

	tracks, err := c.FetchTrending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Track{
		{
			Name:    "Espresso",
			Artists: "Sabrina Carpenter",
			Image:   "https://i.scdn.co/a.jpg",
			URL:     "https://open.spotify.com/track/1",
		},
		{
			Name:    "Unknown Track",
			Artists: "A, B",
			Image:   PlaceholderImage,
			URL:     "#",
		},
	}, tracks)
	assert.Equal(t, "limit=50&market=US", f.gotQuery)
	assert.EqualValues(t, 1, f.tokens.Load())

	// The token is reused until it expires.
	_, err = c.FetchTrending(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.tokens.Load())
}

func TestFetchTrendingFailures(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		f := &fakeSpotify{body: playlistJSON}
		c := newTestClient(t, f, "", "")
		_, err := c.FetchTrending(context.Background())
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Zero(t, f.fetches.Load())
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := &fakeSpotify{body: playlistJSON}
		c := newTestClient(t, f, "id", "wrong")
		_, err := c.FetchTrending(context.Background())
		assert.Error(t, err)
		assert.Zero(t, f.fetches.Load())
	})

	t.Run("api error", func(t *testing.T) {
		f := &fakeSpotify{status: http.StatusNotFound, body: `{"error":{"status":404,"message":"Resource not found"}}`}
		c := newTestClient(t, f, "id", "secret")
		_, err := c.FetchTrending(context.Background())
		assert.ErrorContains(t, err, "status 404")
		assert.ErrorContains(t, err, "Resource not found")
	})
}

type stubSource struct {
	calls  int
	tracks []Track
	err    error
}

func (s *stubSource) FetchTrending(context.Context) ([]Track, error) {
	s.calls++
	return s.tracks, s.err
}

func TestCachedSource(t *testing.T) {
	src := &stubSource{tracks: []Track{{Name: "a"}}}
	c := NewCachedSource(src, time.Minute)

	for i := 0; i < 3; i++ {
		tracks, err := c.FetchTrending(context.Background())
		require.NoError(t, err)
		assert.Len(t, tracks, 1)
	}
	assert.Equal(t, 1, src.calls)

	c.Flush()
	_, _ = c.FetchTrending(context.Background())
	assert.Equal(t, 2, src.calls)
}

func TestCachedSourceSkipsFailures(t *testing.T) {
	src := &stubSource{err: errors.New("boom")}
	c := NewCachedSource(src, time.Minute)

	_, err := c.FetchTrending(context.Background())
	assert.Error(t, err)

	src.err = nil
	tracks, err := c.FetchTrending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tracks)

	src.tracks = []Track{{Name: "b"}}
	tracks, err = c.FetchTrending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Track{{Name: "b"}}, tracks)
	assert.Equal(t, 3, src.calls)
}

func TestCachedSourceDisabled(t *testing.T) {
	src := &stubSource{tracks: []Track{{Name: "a"}}}
	c := NewCachedSource(src, 0)

	c.FetchTrending(context.Background())
	c.FetchTrending(context.Background())
	assert.Equal(t, 2, src.calls)
}
