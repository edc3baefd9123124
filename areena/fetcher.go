package areena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/areena/cache"
)

// DefaultRequestDelay is slept before every live request
const DefaultRequestDelay = 200 * time.Millisecond

// Fetcher resolves URLs to decoded JSON through the response cache
type Fetcher struct {
	store      cache.Store
	httpClient *http.Client
	delay      time.Duration
	logger     zerolog.Logger
}

// NewFetcher creates a fetcher backed by store
func NewFetcher(store cache.Store, httpClient *http.Client, delay time.Duration, logger zerolog.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		store:      store,
		httpClient: httpClient,
		delay:      delay,
		logger:     logger,
	}
}

// Fetch decodes the JSON body for rawURL into out. A cache entry no older
// than ttl is used when present; otherwise the URL is requested and the body
// replaces the cache entry before decoding.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, ttl time.Duration, out any) error {
	key, err := cache.Key(rawURL)
	if err != nil {
		return err
	}
	redacted := cache.Redact(rawURL)

	fresh, err := f.store.Fresh(key, ttl)
	if err != nil {
		return err
	}
	if fresh {
		body, ok, err := f.store.Read(key)
		if err != nil {
			return err
		}
		if ok {
			f.logger.Debug().Str("url", redacted).Str("key", key).Msg("Getting URL from cache")
			return decodeBody(body, redacted, out)
		}
	}

	body, err := f.get(ctx, rawURL, redacted)
	if err != nil {
		return err
	}

	if err := f.store.Write(key, body); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}

	return decodeBody(body, redacted, out)
}

// get performs one live GET after the configured delay. No retries.
func (f *Fetcher) get(ctx context.Context, rawURL, redacted string) ([]byte, error) {
	if err := sleep(ctx, f.delay); err != nil {
		return nil, err
	}

	f.logger.Debug().Str("url", redacted).Msg("Getting URL")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		// net/http embeds the full URL, credentials included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrConnectivity, redacted, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{URL: redacted}
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{
			URL:         redacted,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Message:     "url couldn't be loaded",
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
		return nil, &ResponseError{
			URL:         redacted,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Message:     "invalid content type",
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %v", ErrConnectivity, redacted, err)
	}

	f.logger.Trace().Str("url", redacted).Int("bytes", len(body)).Msg("Received response")
	return body, nil
}

func decodeBody(body []byte, redacted string, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, redacted, err)
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
