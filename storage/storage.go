package storage

import (
	"context"
)

type IStorage interface {
	ClientState() IClientStateStorage
	Close()
}

// IClientStateStorage persists the small per-client key/value state a browser
// would keep in local storage: token, user snapshot, last selected profile.
type IClientStateStorage interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID string, keys ...string) error
	Truncate(ctx context.Context) error
}
