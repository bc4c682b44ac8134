package table

// EditState is the row editor's state.
type EditState int

const (
	Idle EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "idle"
}

// Editor holds the single row in edit mode and its pending changes. It
// never writes to the store: committed values are handed back to the caller.
//
// A row whose update was rejected keeps its rejected values as a failure
// marker so it can be reopened with Retry.
type Editor struct {
	schema *Schema
	row    Record
	buffer map[string]string
	state  EditState
	failed map[string]map[string]string
}

func NewEditor(schema *Schema) *Editor {
	return &Editor{schema: schema, failed: make(map[string]map[string]string)}
}

func (e *Editor) State() EditState {
	return e.state
}

// RowID returns the id of the row being edited, or "" when idle.
func (e *Editor) RowID() string {
	if e.state != Editing {
		return ""
	}
	return e.row.ID
}

// Begin puts row into edit mode. A previous row's buffer is discarded.
func (e *Editor) Begin(row Record) {
	e.row = row.Clone()
	e.buffer = make(map[string]string, len(row.Values))
	for k, v := range row.Values {
		e.buffer[k] = v
	}
	e.state = Editing
}

// Set records a pending change. It does nothing while idle or for read-only
// columns; dropdown columns reject values outside their options.
func (e *Editor) Set(label, value string) error {
	if e.state != Editing {
		return nil
	}
	c, ok := e.schema.Column(label)
	if !ok || !c.Editable {
		return nil
	}
	if !c.Allows(value) {
		return invalid(label, "%s must be one of the listed options.", label)
	}
	e.buffer[label] = value
	return nil
}

// Value is what the editor control shows: the buffered value, else the
// row's original one.
func (e *Editor) Value(label string) string {
	if v, ok := e.buffer[label]; ok {
		return v
	}
	return e.row.Values[label]
}

// Buffer returns a copy of the pending values.
func (e *Editor) Buffer() map[string]string {
	out := make(map[string]string, len(e.buffer))
	for k, v := range e.buffer {
		out[k] = v
	}
	return out
}

// Commit returns the row merged with the buffer and leaves edit mode. Only
// editable columns are taken from the buffer.
func (e *Editor) Commit() (Record, bool) {
	if e.state != Editing {
		return Record{}, false
	}
	changes := make(map[string]string, len(e.buffer))
	for _, c := range e.schema.Columns {
		if v, ok := e.buffer[c.Label]; ok && c.Editable {
			changes[c.Label] = v
		}
	}
	merged := e.row.merge(changes)
	e.reset()
	return merged, true
}

// Cancel drops the buffer and leaves edit mode.
func (e *Editor) Cancel() bool {
	if e.state != Editing {
		return false
	}
	e.reset()
	return true
}

// MarkFailed flags id as needing a retry with the rejected values.
func (e *Editor) MarkFailed(id string, values map[string]string) {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	e.failed[id] = cp
}

func (e *Editor) ClearFailed(id string) {
	delete(e.failed, id)
}

func (e *Editor) ClearAllFailed() {
	e.failed = make(map[string]map[string]string)
}

func (e *Editor) Failed(id string) bool {
	_, ok := e.failed[id]
	return ok
}

// Retry reopens a failed row seeded with the values that were rejected.
func (e *Editor) Retry(row Record) bool {
	values, ok := e.failed[row.ID]
	if !ok {
		return false
	}
	e.Begin(row)
	for k, v := range values {
		if c, ok := e.schema.Column(k); ok && c.Editable {
			e.buffer[k] = v
		}
	}
	return true
}

func (e *Editor) reset() {
	e.row = Record{}
	e.buffer = nil
	e.state = Idle
}
