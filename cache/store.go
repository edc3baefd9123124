package cache

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Credential query parameters are never part of a cache key.
const (
	ParamAppID  = "app_id"
	ParamAppKey = "app_key"
)

// ErrEmptyKey is returned when a store operation receives an empty key
var ErrEmptyKey = errors.New("cache: empty key")

// Store persists raw response bodies keyed by Key
type Store interface {
	// Read returns the stored bytes and whether an entry exists
	Read(key string) ([]byte, bool, error)

	// Fresh reports whether the entry exists and is no older than ttl
	Fresh(key string, ttl time.Duration) (bool, error)

	// Write replaces the entry for key wholesale
	Write(key string, data []byte) error
}

// Backend is a Store that owns on-disk resources
type Backend interface {
	Store

	// Clear drops every entry
	Clear() error

	// Close releases the backend
	Close() error
}

// Clock returns the current time. Stores use it for stamping and freshness.
type Clock func() time.Time

// Key derives a filesystem-safe cache key from a request URL.
//
// The path has its leading slash removed and remaining slashes replaced by
// hyphens. The query string, minus app_id and app_key, is appended as
// URL-safe base64 of "?" + the sorted encoding.
func Key(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("cache: parse url: %w", err)
	}

	query := u.Query()
	query.Del(ParamAppID)
	query.Del(ParamAppKey)

	path := strings.ReplaceAll(strings.TrimLeft(u.Path, "/"), "/", "-")
	encoded := base64.URLEncoding.EncodeToString([]byte("?" + query.Encode()))

	return path + encoded, nil
}

// Redact returns rawURL with credential parameters removed, for logs and errors.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	if !query.Has(ParamAppID) && !query.Has(ParamAppKey) {
		return rawURL
	}
	query.Del(ParamAppID)
	query.Del(ParamAppKey)
	u.RawQuery = query.Encode()
	return u.String()
}

// isFresh applies the freshness rule shared by all backends: an entry is fresh
// when its age does not exceed ttl. Entries stamped in the future are fresh.
func isFresh(modTime, now time.Time, ttl time.Duration) bool {
	return now.Sub(modTime) <= ttl
}

// Backend names accepted by Open
const (
	BackendFiles = "files"
	BackendBolt  = "bolt"
)

// Open returns the named backend rooted at dir
func Open(backend, dir string, now Clock) (Backend, error) {
	switch backend {
	case "", BackendFiles:
		return NewFileStore(dir, WithClock(now)), nil
	case BackendBolt:
		return OpenBoltStore(filepath.Join(dir, "responses.db"), now)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
