package store

import "context"

// Backend holds the serialised collection. Read returns nil, nil when
// nothing has been stored yet. Write must replace the previous content
// atomically: a reader sees either the old bytes or the new ones.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
}
