package objectstore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/boreledger/boreledger/pkg/apperr"
	bolt "go.etcd.io/bbolt"
)

var bucketObjects = []byte("objects")

// BoltBackend is a single-bucket key→blob store backed by an embedded
// go.etcd.io/bbolt database: one bucket holding raw object bytes keyed by
// the object-store key directly. It gives mock mode and local development
// a durable, transactional backend in a single database file, with no
// network access.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (creating if absent) a BoltDB file under dataDir.
func NewBoltBackend(dataDir string) (*BoltBackend, error) {
	dbPath := filepath.Join(dataDir, "boreledger.db")

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketObjects)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

// Close closes the underlying database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

func (b *BoltBackend) Put(ctx context.Context, key string, body []byte, contentType string, allowOverwrite bool) error {
	if !allowOverwrite {
		if err := guardOverwrite(ctx, b, key); err != nil {
			return err
		}
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketObjects)
		return bucket.Put([]byte(key), body)
	})
	if err != nil {
		return apperr.Transport("bolt put", err)
	}
	return nil
}

func (b *BoltBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketObjects)
		v := bucket.Get([]byte(key))
		if v == nil {
			return apperr.NotFound("key %q", key)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BoltBackend) Head(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketObjects)
		exists = bucket.Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, apperr.Transport("bolt head", err)
	}
	return exists, nil
}

func (b *BoltBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketObjects)
		c := bucket.Cursor()
		bp := []byte(prefix)
		for k, _ := c.Seek(bp); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Transport("bolt list", err)
	}
	return keys, nil
}

func (b *BoltBackend) Ping(ctx context.Context) error {
	return b.db.View(func(tx *bolt.Tx) error { return nil })
}
