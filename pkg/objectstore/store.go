// Package objectstore abstracts read/write/head/list of opaque byte blobs
// at a string key over three backends: S3, the local filesystem, and an
// embedded BoltDB store used for mock mode. Callers never see
// which backend is active; all three implement the same Store contract and
// the same overwrite-guard semantics.
package objectstore

import (
	"context"

	"github.com/boreledger/boreledger/pkg/apperr"
)

// Object is one key's bytes plus its declared content type.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// Store is the contract every backend implements.
type Store interface {
	// Put writes body at key with the given content type. When
	// allowOverwrite is false, an existing key yields
	// apperr.ErrOverwriteForbidden via a Head check performed first.
	Put(ctx context.Context, key string, body []byte, contentType string, allowOverwrite bool) error

	// Get reads the full object at key. A missing key yields
	// apperr.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Head reports whether key exists without reading its body.
	Head(ctx context.Context, key string) (bool, error)

	// List enumerates keys sharing prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Ping probes backend connectivity. Failures are logged by the
	// caller at warn level and never fail process startup — Ping itself
	// just reports the error.
	Ping(ctx context.Context) error
}

// guardOverwrite is the shared overwrite-check every backend's Put calls
// before writing when allowOverwrite is false.
func guardOverwrite(ctx context.Context, s Store, key string) error {
	exists, err := s.Head(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return apperr.OverwriteForbidden("key %q", key)
	}
	return nil
}
