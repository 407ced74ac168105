package domain

import "context"

// WorkspaceStore persists the serialized workspace as one opaque blob.
type WorkspaceStore interface {
	// Load returns the last saved blob, or store.ErrNotFound if nothing has
	// been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Ping(ctx context.Context) error
}
