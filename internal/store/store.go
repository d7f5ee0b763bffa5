package store

import (
	"context"

	"cvforge/internal/identity"
	"cvforge/internal/types"
)

// DocumentStore persists one full profile document per identity.
// Save replaces the whole document; concurrent writers race and the
// last write wins. Load returns (nil, nil) when no document exists,
// which is a normal outcome for first-time users, never an error.
type DocumentStore interface {
	Save(ctx context.Context, id identity.Identity, p types.Profile) error
	Load(ctx context.Context, id identity.Identity) (*types.Profile, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
