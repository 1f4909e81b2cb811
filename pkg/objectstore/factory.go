package objectstore

import (
	"context"
	"fmt"

	"github.com/boreledger/boreledger/pkg/log"
)

// StorageMode selects which backend New constructs.
type StorageMode string

const (
	ModeS3    StorageMode = "s3"
	ModeLocal StorageMode = "local"
	ModeMock  StorageMode = "mock"
)

// NewConfig carries just the fields objectstore.New needs, decoupling it
// from pkg/config's broader surface.
type NewConfig struct {
	StorageMode StorageMode
	BucketName  string
	BasePath    string
	AWSRegion   string
}

// New constructs the backend selected by cfg.StorageMode and runs its
// connectivity probe. A probe failure is logged at warn level and never
// fails construction — an unreachable backend should surface on first
// use, not block startup.
func New(ctx context.Context, cfg NewConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.StorageMode {
	case ModeS3:
		store, err = NewS3Backend(ctx, cfg.BucketName, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
	case ModeLocal:
		store, err = NewLocalBackend(cfg.BasePath)
		if err != nil {
			return nil, err
		}
	case ModeMock:
		store, err = NewBoltBackend(cfg.BasePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("objectstore: unknown storage mode %q", cfg.StorageMode)
	}

	if pingErr := store.Ping(ctx); pingErr != nil {
		log.WithComponent("objectstore").Warn().Err(pingErr).
			Str("storage_mode", string(cfg.StorageMode)).
			Msg("object store connectivity probe failed; continuing startup")
	}

	return store, nil
}
