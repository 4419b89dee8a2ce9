package store

import "context"

// Backend persists raw document bytes under a key. Load returns (nil, nil)
// when nothing is stored under the key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}
