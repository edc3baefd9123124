package areena

import (
	"net/http"
	"strings"
	"time"

	"github.com/s0up4200/areena/cache"
)

// Default upstream hosts
const (
	DefaultAPIURL    = "https://external.api.yle.fi"
	DefaultAreenaURL = "https://areena.yle.fi"
)

// Default time-to-live per endpoint family
const (
	DefaultCatalogTTL = 24 * time.Hour
	DefaultListingTTL = 4 * time.Hour
)

// EmptyResultPolicy decides what an empty episode or season listing means
type EmptyResultPolicy int

const (
	// EmptyResultError turns an empty listing into a NotFoundError
	EmptyResultError EmptyResultPolicy = iota
	// EmptyResultEmpty returns the empty listing as-is
	EmptyResultEmpty
)

// ParseEmptyResultPolicy parses "error" or "empty"
func ParseEmptyResultPolicy(s string) (EmptyResultPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return EmptyResultError, true
	case "empty":
		return EmptyResultEmpty, true
	default:
		return EmptyResultError, false
	}
}

func (p EmptyResultPolicy) String() string {
	if p == EmptyResultEmpty {
		return "empty"
	}
	return "error"
}

// Credentials are attached to every request as app_id and app_key
type Credentials struct {
	AppID  string
	AppKey string
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient   *http.Client
	timeout      time.Duration
	store        cache.Store
	cacheDir     string
	requestDelay time.Duration
	pageSize     int
	catalogTTL   time.Duration
	listingTTL   time.Duration
	apiURL       string
	areenaURL    string
	now          func() time.Time
	emptyResult  EmptyResultPolicy
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:      30 * time.Second,
		cacheDir:     ".cache",
		requestDelay: DefaultRequestDelay,
		pageSize:     DefaultPageSize,
		catalogTTL:   DefaultCatalogTTL,
		listingTTL:   DefaultListingTTL,
		apiURL:       DefaultAPIURL,
		areenaURL:    DefaultAreenaURL,
		now:          time.Now,
		emptyResult:  EmptyResultError,
	}
}

// WithHTTPClient sets the HTTP client used for live requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithCacheStore sets the response cache. It overrides WithCacheDir.
func WithCacheStore(store cache.Store) Option {
	return func(o *clientOptions) {
		o.store = store
	}
}

// WithCacheDir sets the directory of the default file cache.
func WithCacheDir(dir string) Option {
	return func(o *clientOptions) {
		o.cacheDir = dir
	}
}

// WithRequestDelay sets the pause before every live request.
func WithRequestDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		if delay >= 0 {
			o.requestDelay = delay
		}
	}
}

// WithPageSize sets the number of items requested per page.
func WithPageSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithTTLs sets the cache lifetimes of catalog lists (categories, services,
// schedules) and of listings and searches.
func WithTTLs(catalog, listing time.Duration) Option {
	return func(o *clientOptions) {
		if catalog >= 0 {
			o.catalogTTL = catalog
		}
		if listing >= 0 {
			o.listingTTL = listing
		}
	}
}

// WithBaseURLs overrides the metadata API and Areena hosts.
func WithBaseURLs(apiURL, areenaURL string) Option {
	return func(o *clientOptions) {
		if apiURL != "" {
			o.apiURL = strings.TrimRight(apiURL, "/")
		}
		if areenaURL != "" {
			o.areenaURL = strings.TrimRight(areenaURL, "/")
		}
	}
}

// WithClock sets the clock of the default file cache.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEmptyResultPolicy decides whether empty episode and season listings fail.
func WithEmptyResultPolicy(policy EmptyResultPolicy) Option {
	return func(o *clientOptions) {
		o.emptyResult = policy
	}
}
