package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing was ever saved under the key.
var ErrNotFound = errors.New("blob not found")

// Ports for persistence adapters.
type (
	BlobLoader interface {
		Load(ctx context.Context, key string) ([]byte, error)
	}

	BlobSaver interface {
		Save(ctx context.Context, key string, data []byte) error
	}

	// BlobStore is the key-value medium the ledger persists into.
	BlobStore interface {
		BlobLoader
		BlobSaver
	}
)
