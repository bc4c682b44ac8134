// Package table is the editable, paginated CRUD table shared by every
// category screen: a record store synchronised with a remote collection, a
// single-row editor, a pager, a delete confirmation gate and an auto-expiring
// status banner.
package table

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configures a Table. Zero values pick the defaults.
type Options struct {
	PageSize int
	TTL      StatusTTL
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Table owns the state of one category screen. Every method is safe for
// concurrent use; the lock is never held across a remote call, so commands
// resolve in completion order.
type Table struct {
	mu       sync.Mutex
	schema   *Schema
	store    *Store
	editor   *Editor
	pager    Pager
	gate     Gate
	dispatch *Dispatcher
	status   *Status
	epoch    uint64

	ttl StatusTTL
	log *zap.Logger
	now func() time.Time
}

func New(schema *Schema, remote Remote, opts Options) *Table {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.TTL.Success <= 0 {
		opts.TTL.Success = DefaultStatusTTL.Success
	}
	if opts.TTL.Error <= 0 {
		opts.TTL.Error = DefaultStatusTTL.Error
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Table{
		schema:   schema,
		store:    NewStore(),
		editor:   NewEditor(schema),
		pager:    NewPager(opts.PageSize),
		dispatch: NewDispatcher(schema, remote),
		ttl:      opts.TTL,
		log:      opts.Logger.With(zap.String("category", schema.Category)),
		now:      opts.Clock,
	}
}

func (t *Table) Schema() *Schema {
	return t.schema
}

// Invalidate starts a new request epoch. Fetches issued before it are
// discarded when they resolve.
func (t *Table) Invalidate() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	return t.epoch
}

// Fetch replaces the list with the remote one. On failure the previous list
// stays visible. A response overtaken by a newer fetch or a tab switch is
// dropped with ErrStaleResponse.
func (t *Table) Fetch(ctx context.Context) error {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch
	t.mu.Unlock()

	records, err := t.dispatch.FetchAll(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch {
		t.log.Debug("dropping stale fetch", zap.Uint64("epoch", epoch), zap.Uint64("current", t.epoch))
		return ErrStaleResponse
	}
	if err != nil {
		t.fail(OpFetch, err)
		return err
	}
	t.store.ReplaceAll(records)
	t.editor.ClearAllFailed()
	if id := t.editor.RowID(); id != "" {
		if _, ok := t.store.Get(id); !ok {
			t.editor.Cancel()
		}
	}
	if id := t.gate.RowID(); id != "" && t.gate.State() == GateOpen {
		if _, ok := t.store.Get(id); !ok {
			t.gate.Close()
		}
	}
	t.pager.Clamp(t.store.Len())
	return nil
}

// Create validates and posts a new row, appending the server's record.
func (t *Table) Create(ctx context.Context, values map[string]string) (Record, error) {
	record, err := t.dispatch.Create(ctx, values)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.fail(OpCreate, err)
		return Record{}, err
	}
	t.store.Append(record)
	t.pager.Clamp(t.store.Len())
	t.succeed(OpCreate)
	return record, nil
}

// BeginEdit puts a row in edit mode, discarding any other row's buffer.
func (t *Table) BeginEdit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.store.Get(id)
	if !ok {
		return ErrRecordNotFound
	}
	t.editor.Begin(row)
	return nil
}

// EditField buffers a change. It is a no-op while no row is being edited.
// A rejected value raises an error status and leaves the buffer unchanged.
func (t *Table) EditField(label, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.editor.Set(label, value); err != nil {
		t.fail(OpUpdate, err)
		return err
	}
	return nil
}

// Commit leaves edit mode at once and dispatches the merged row. A rejected
// update keeps the store as it was and flags the row for Retry.
func (t *Table) Commit(ctx context.Context) error {
	t.mu.Lock()
	row, ok := t.editor.Commit()
	t.mu.Unlock()
	if !ok {
		return ErrNotEditing
	}

	record, err := t.dispatch.Update(ctx, row.ID, row.Values)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.editor.MarkFailed(row.ID, row.Values)
		t.fail(OpUpdate, err)
		return err
	}
	t.editor.ClearFailed(row.ID)
	if !t.store.ReplaceByID(row.ID, record) {
		t.log.Warn("updated record no longer listed", zap.String("id", row.ID))
	}
	t.succeed(OpUpdate)
	return nil
}

// Cancel leaves edit mode without touching the store.
func (t *Table) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editor.Cancel()
}

// Retry reopens a row whose last update was rejected, with the rejected
// values in the buffer.
func (t *Table) Retry(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.store.Get(id)
	if !ok {
		return ErrRecordNotFound
	}
	if !t.editor.Retry(row) {
		t.editor.Begin(row)
	}
	return nil
}

// RequestDelete opens the confirmation gate for a row.
func (t *Table) RequestDelete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.store.Get(id); !ok {
		return ErrRecordNotFound
	}
	if !t.gate.Open(id) {
		return ErrGateClosed
	}
	return nil
}

// CancelDelete closes the gate. Nothing is dispatched.
func (t *Table) CancelDelete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gate.Cancel()
}

// ConfirmDelete dispatches the delete bound to the open gate. Only the first
// confirmation of an open cycle dispatches; the rest return ErrGateClosed.
func (t *Table) ConfirmDelete(ctx context.Context) error {
	t.mu.Lock()
	id, ok := t.gate.Confirm()
	t.mu.Unlock()
	if !ok {
		return ErrGateClosed
	}

	err := t.dispatch.Delete(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.gate.Close()
	if err != nil {
		t.fail(OpDelete, err)
		return err
	}
	t.store.RemoveByID(id)
	t.editor.ClearFailed(id)
	if t.editor.RowID() == id {
		t.editor.Cancel()
	}
	t.pager.Clamp(t.store.Len())
	t.succeed(OpDelete)
	return nil
}

func (t *Table) GoTo(page int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.GoTo(page, t.store.Len())
}

func (t *Table) Next() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Next(t.store.Len())
}

func (t *Table) Previous() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Previous(t.store.Len())
}

// VisibleSlice returns the rows of the current page in store order.
func (t *Table) VisibleSlice() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.window(t.pager.Bounds(t.store.Len()))
}

// Records returns the whole list in store order.
func (t *Table) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Records()
}

// Status returns the banner if it has not expired yet.
func (t *Table) Status() *Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeStatus()
}

func (t *Table) DismissStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = nil
}

func (t *Table) activeStatus() *Status {
	if !t.status.Active(t.now()) {
		t.status = nil
		return nil
	}
	s := *t.status
	return &s
}

func (t *Table) succeed(op Op) {
	t.raise(StatusSuccess, t.dispatch.SuccessMessage(op))
}

func (t *Table) fail(op Op, err error) {
	msg := t.dispatch.ErrorMessage(op, err)
	if IsValidation(err) {
		t.log.Debug("rejected locally", zap.String("op", string(op)), zap.String("reason", msg))
	} else {
		t.log.Warn("command failed", zap.String("op", string(op)), zap.Error(err))
	}
	t.raise(StatusError, msg)
}

func (t *Table) raise(kind StatusKind, msg string) {
	now := t.now()
	t.status = &Status{Kind: kind, Message: msg, ExpiresAt: t.ttl.expiry(kind, now)}
}
