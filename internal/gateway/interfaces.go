package gateway

import "context"

// SnapshotFunc receives a full replacement snapshot of the subscribed documents.
type SnapshotFunc func(Snapshot)

// ErrorFunc receives a failure of the live snapshot stream.
type ErrorFunc func(error)

// Collection is the remote document collection a store mirrors.
type Collection interface {
	Name() string
	Subscribe(ctx context.Context, filter Filter, onSnapshot SnapshotFunc, onError ErrorFunc) (unsubscribe func(), err error)
	Add(ctx context.Context, body map[string]any) (string, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	GetOnce(ctx context.Context, id string) (*Document, error)
	QueryOnce(ctx context.Context, filter Filter) ([]Document, error)
}
