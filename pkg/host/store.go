package host

import (
	"context"

	"indexfund-api/pkg/registry"
)

// Store persists registry state between calls. Save must be atomic: either
// the whole state is written or none of it is.
type Store interface {
	Load(ctx context.Context, registryID string) (*registry.State, error)
	Save(ctx context.Context, registryID string, state registry.State) error
}
