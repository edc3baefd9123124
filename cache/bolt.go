package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResponses = []byte("responses")

// stampSize is the length of the write-time prefix on every stored value
const stampSize = 8

// BoltStore keeps all entries in a single bbolt database. Each value is the
// big-endian UnixNano write time followed by the raw body.
type BoltStore struct {
	db  *bolt.DB
	now Clock
}

// OpenBoltStore opens (creating if needed) the database at path
func OpenBoltStore(path string, now Clock) (*BoltStore, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create bucket: %w", err)
	}

	return &BoltStore{db: db, now: now}, nil
}

func (s *BoltStore) get(key string) (stamp time.Time, body []byte, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResponses).Get([]byte(key))
		if v == nil {
			return nil
		}
		if len(v) < stampSize {
			return fmt.Errorf("cache: entry %s is truncated", key)
		}
		stamp = time.Unix(0, int64(binary.BigEndian.Uint64(v[:stampSize])))
		// bbolt values are only valid inside the transaction
		body = append([]byte(nil), v[stampSize:]...)
		ok = true
		return nil
	})
	return stamp, body, ok, err
}

// Read returns the cached bytes for key
func (s *BoltStore) Read(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	_, body, ok, err := s.get(key)
	if err != nil {
		return nil, false, err
	}
	return body, ok, nil
}

// Fresh reports whether the entry exists and is within ttl
func (s *BoltStore) Fresh(key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	stamp, _, ok, err := s.get(key)
	if err != nil || !ok {
		return false, err
	}
	return isFresh(stamp, s.now(), ttl), nil
}

// Write replaces the entry for key in a single transaction
func (s *BoltStore) Write(key string, data []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	value := make([]byte, stampSize+len(data))
	binary.BigEndian.PutUint64(value[:stampSize], uint64(s.now().UnixNano()))
	copy(value[stampSize:], data)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), value)
	})
}

// Clear drops every entry
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketResponses)
		return err
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
