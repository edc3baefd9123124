package areena

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/areena/cache"
)

func TestFetcherCachesResponses(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON("/v1/thing.json", map[string]any{"value": 42})

	clock := newTestClock()
	store, _ := newTestStore(clock)
	fetcher := NewFetcher(store, nil, 0, zerolog.Nop())
	ctx := context.Background()

	url := api.URL() + "/v1/thing.json?app_id=a&app_key=b&x=1"

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, fetcher.Fetch(ctx, url, time.Hour, &out))
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, 1, api.count())

	// Different credentials share the cache entry
	out.Value = 0
	require.NoError(t, fetcher.Fetch(ctx, api.URL()+"/v1/thing.json?app_id=c&app_key=d&x=1", time.Hour, &out))
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, 1, api.count())

	// Stale entries are fetched again
	clock.Advance(2 * time.Hour)
	require.NoError(t, fetcher.Fetch(ctx, url, time.Hour, &out))
	assert.Equal(t, 2, api.count())

	// And the refetch refreshed the entry
	require.NoError(t, fetcher.Fetch(ctx, url, time.Hour, &out))
	assert.Equal(t, 2, api.count())
}

func TestFetcherErrors(t *testing.T) {
	api := newFakeAPI(t)
	api.router.HandleFunc("/missing.json", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	api.router.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	})
	api.router.HandleFunc("/html.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html></html>`))
	})
	api.router.HandleFunc("/charset.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"ok": true}`))
	})
	api.router.HandleFunc("/garbage.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [`))
	})

	clock := newTestClock()
	store, _ := newTestStore(clock)
	fetcher := NewFetcher(store, nil, 0, zerolog.Nop())
	ctx := context.Background()
	creds := "?app_id=" + testAppID + "&app_key=" + testAppKey

	t.Run("404 is not found", func(t *testing.T) {
		var out map[string]any
		err := fetcher.Fetch(ctx, api.URL()+"/missing.json"+creds, time.Hour, &out)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, api.URL()+"/missing.json", nf.URL)
		assert.NotContains(t, err.Error(), testAppKey)
	})

	t.Run("500 is a bad response and not cached", func(t *testing.T) {
		var out map[string]any
		err := fetcher.Fetch(ctx, api.URL()+"/broken.json"+creds, time.Hour, &out)
		assert.ErrorIs(t, err, ErrBadResponse)
		assert.NotErrorIs(t, err, ErrNotFound)

		key, kerr := cache.Key(api.URL() + "/broken.json")
		require.NoError(t, kerr)
		_, ok, rerr := store.Read(key)
		require.NoError(t, rerr)
		assert.False(t, ok)
	})

	t.Run("wrong content type is a bad response", func(t *testing.T) {
		var out map[string]any
		err := fetcher.Fetch(ctx, api.URL()+"/html.json"+creds, time.Hour, &out)
		assert.ErrorIs(t, err, ErrBadResponse)

		var re *ResponseError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "text/html", re.ContentType)
	})

	t.Run("json media type with parameters is accepted", func(t *testing.T) {
		var out map[string]any
		require.NoError(t, fetcher.Fetch(ctx, api.URL()+"/charset.json"+creds, time.Hour, &out))
		assert.Equal(t, true, out["ok"])
	})

	t.Run("malformed body keeps the cache entry", func(t *testing.T) {
		before := api.count()
		var out map[string]any
		err := fetcher.Fetch(ctx, api.URL()+"/garbage.json"+creds, time.Hour, &out)
		assert.ErrorIs(t, err, ErrMalformed)

		key, kerr := cache.Key(api.URL() + "/garbage.json")
		require.NoError(t, kerr)
		_, ok, rerr := store.Read(key)
		require.NoError(t, rerr)
		assert.True(t, ok)

		// Served from the cache again within the ttl
		err = fetcher.Fetch(ctx, api.URL()+"/garbage.json"+creds, time.Hour, &out)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Equal(t, before+1, api.count())
	})
}

func TestFetcherConnectivity(t *testing.T) {
	api := newFakeAPI(t)
	url := api.URL() + "/gone.json?app_id=" + testAppID + "&app_key=" + testAppKey
	api.server.Close()

	store, _ := newTestStore(newTestClock())
	fetcher := NewFetcher(store, nil, 0, zerolog.Nop())

	var out map[string]any
	err := fetcher.Fetch(context.Background(), url, time.Hour, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.NotContains(t, err.Error(), testAppKey)
}

func TestFetcherDelayHonorsContext(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON("/slow.json", map[string]any{})

	store, _ := newTestStore(newTestClock())
	fetcher := NewFetcher(store, nil, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := fetcher.Fetch(ctx, api.URL()+"/slow.json", time.Hour, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, api.count())
}

func TestFetcherDelaysLiveRequests(t *testing.T) {
	api := newFakeAPI(t)
	api.handleJSON("/paced.json", map[string]any{})

	store, _ := newTestStore(newTestClock())
	delay := 30 * time.Millisecond
	fetcher := NewFetcher(store, nil, delay, zerolog.Nop())

	start := time.Now()
	var out map[string]any
	require.NoError(t, fetcher.Fetch(context.Background(), api.URL()+"/paced.json", time.Hour, &out))
	assert.GreaterOrEqual(t, time.Since(start), delay)

	// Cache hits skip the delay
	start = time.Now()
	require.NoError(t, fetcher.Fetch(context.Background(), api.URL()+"/paced.json", time.Hour, &out))
	assert.Less(t, time.Since(start), delay)
}
