package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

// Gateway loads and saves the whole collection through a Backend. Update
// holds the write lock for the full load-mutate-save cycle, which makes it
// the single writer for the store; View shares a read lock.
type Gateway struct {
	backend Backend
	mu      sync.RWMutex
}

func NewGateway(backend Backend) *Gateway {
	return &Gateway{backend: backend}
}

// Load reads and normalises the stored collection. It does not lock; use
// View or Update unless the caller already serialises access.
func (g *Gateway) Load(ctx context.Context) (*domain.Collection, error) {
	data, err := g.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	c, report, err := Decode(data)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptStore) {
			logging.FromContext(ctx).Error("store is not parseable", "error", err, "bytes", len(data))
		}
		return nil, fmt.Errorf("Load: %w", err)
	}

	if report.FromVersion != SchemaVersion || report.DroppedRecords > 0 || len(report.Repairs) > 0 {
		logging.FromContext(ctx).Warn("store normalised on load",
			"from_version", report.FromVersion,
			"dropped_records", report.DroppedRecords,
			"repairs", report.Repairs,
		)
	}
	return c, nil
}

func (g *Gateway) Save(ctx context.Context, c *domain.Collection) error {
	data, err := Encode(c)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err := g.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// View runs fn against a consistent snapshot. Changes fn makes are discarded.
func (g *Gateway) View(ctx context.Context, fn func(*domain.Collection) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, err := g.Load(ctx)
	if err != nil {
		return err
	}
	return fn(c)
}

// Update loads, applies fn and saves, all under the write lock. When fn
// returns an error nothing is saved.
func (g *Gateway) Update(ctx context.Context, fn func(*domain.Collection) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return g.Save(ctx, c)
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.backend.Ping(ctx)
}
