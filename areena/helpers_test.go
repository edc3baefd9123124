package areena

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/areena/cache"
)

const (
	testAppID  = "test-id"
	testAppKey = "test-key"
)

// testClock is a settable clock shared by a store and a test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeAPI serves both upstream hosts from one router and counts requests
type fakeAPI struct {
	t      *testing.T
	router *mux.Router
	server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, router: mux.NewRouter()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r)
		f.mu.Unlock()
		f.router.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) URL() string {
	return f.server.URL
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) request(i int) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

// handleJSON serves a fixed JSON document on path
func (f *fakeAPI) handleJSON(path string, body any) {
	f.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, body)
	}).Methods(http.MethodGet)
}

// handlePaged serves total generated items on path honoring offset/limit.
// items builds the item at a given index.
func (f *fakeAPI) handlePaged(path string, total int, item func(i int) any) {
	f.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		data := make([]any, 0, limit)
		for i := offset; i < total && i < offset+limit; i++ {
			data = append(data, item(i))
		}
		writeJSON(w, map[string]any{
			"meta": map[string]any{"offset": offset, "limit": limit, "count": total},
			"data": data,
		})
	}).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	switch b := body.(type) {
	case string:
		w.Write([]byte(b))
	default:
		json.NewEncoder(w).Encode(b)
	}
}

func newTestStore(clock *testClock) (*cache.FileStore, afero.Fs) {
	fsys := afero.NewMemMapFs()
	return cache.NewFileStore("/cache", cache.WithFs(fsys), cache.WithClock(clock.Now)), fsys
}

func newTestClient(t *testing.T, api *fakeAPI, store cache.Store, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURLs(api.URL(), api.URL()),
		WithCacheStore(store),
		WithRequestDelay(0),
	}
	client, err := NewClient(Credentials{AppID: testAppID, AppKey: testAppKey}, zerolog.Nop(), append(base, opts...)...)
	require.NoError(t, err)
	return client
}
