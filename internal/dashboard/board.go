// Package dashboard serves the server-rendered record screens. Every browser
// session owns a Board with one table per category.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"farmdash/internal/farm"
	"farmdash/internal/table"

	"golang.org/x/sync/errgroup"
)

// TableFactory builds the table for one category.
type TableFactory func(schema *table.Schema) *table.Table

// Board is one session's set of category tables and its active tab.
type Board struct {
	mu     sync.Mutex
	order  []*table.Schema
	tables map[string]*table.Table
	active string
	loaded map[string]bool
}

func NewBoard(schemas []*table.Schema, factory TableFactory) *Board {
	b := &Board{
		order:  schemas,
		tables: make(map[string]*table.Table, len(schemas)),
		loaded: make(map[string]bool, len(schemas)),
	}
	for _, s := range schemas {
		b.tables[s.Category] = factory(s)
	}
	if len(schemas) > 0 {
		b.active = schemas[0].Category
	}
	return b
}

func (b *Board) Schemas() []*table.Schema {
	return b.order
}

func (b *Board) Active() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Table returns the table for a category key or path.
func (b *Board) Table(category string) (*table.Table, error) {
	schema, err := farm.Lookup(category)
	if err != nil {
		return nil, err
	}
	t, ok := b.tables[schema.Category]
	if !ok {
		return nil, fmt.Errorf("board has no %s table: %w", schema.Category, farm.ErrUnknownCategory)
	}
	return t, nil
}

// Switch makes category the active tab. Every status banner is cleared and
// every table's epoch moves on, so responses still in flight for the old tab
// are dropped. The new tab is then fetched.
func (b *Board) Switch(ctx context.Context, category string) (*table.Table, error) {
	t, err := b.Table(category)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.active = t.Schema().Category
	b.mu.Unlock()

	for _, other := range b.tables {
		other.DismissStatus()
		other.Invalidate()
	}
	return t, b.fetch(ctx, t)
}

// Ensure fetches a table the first time it is shown.
func (b *Board) Ensure(ctx context.Context, t *table.Table) error {
	b.mu.Lock()
	done := b.loaded[t.Schema().Category]
	b.mu.Unlock()
	if done {
		return nil
	}
	return b.fetch(ctx, t)
}

// RefreshAll fetches every category concurrently and returns the first
// failure. A response dropped as stale is not a failure.
func (b *Board) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range b.order {
		t := b.tables[s.Category]
		g.Go(func() error {
			return b.fetch(ctx, t)
		})
	}
	return g.Wait()
}

func (b *Board) fetch(ctx context.Context, t *table.Table) error {
	err := t.Fetch(ctx)
	if errors.Is(err, table.ErrStaleResponse) {
		return nil
	}
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.loaded[t.Schema().Category] = true
	b.mu.Unlock()
	return nil
}
