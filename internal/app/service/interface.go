package service

import (
	"context"
	"encoding/json"

	"github.com/atinyakov/go-qr-manager/internal/storage"
)

// Storage is the narrow persistence contract the service depends on.
// Uniqueness of short ids (including retired ones) is enforced here.
type Storage interface {
	Insert(context.Context, storage.Record) (*storage.Record, error)
	Update(context.Context, storage.Record) (*storage.Record, error)
	FindByID(context.Context, string) (*storage.Record, error)
	FindByShortID(context.Context, string) (*storage.Record, error)
	All(context.Context) ([]storage.Record, error)
	Delete(context.Context, string) error
	DeleteAll(context.Context) error
	PingContext(context.Context) error
}

// RecordServiceIface is consumed by the HTTP handlers and mocked in their tests.
type RecordServiceIface interface {
	Create(ctx context.Context, kind string, data json.RawMessage) (*storage.Record, error)
	Update(ctx context.Context, id string, kind string, data json.RawMessage) (*storage.Record, error)
	Get(ctx context.Context, id string) (*storage.Record, error)
	List(ctx context.Context) ([]storage.Record, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Resolve(ctx context.Context, shortID string) (*Resolution, error)
	Image(record *storage.Record) ([]byte, error)
	Preview(record *storage.Record) (string, error)
	ResolveURL(shortID string) string
	PingContext(ctx context.Context) error
}
