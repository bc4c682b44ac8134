package table

// Cell is one rendered table cell.
type Cell struct {
	Column Column
	Value  string
	// Input is true when the cell shows an editor control.
	Input bool
}

// Row is one rendered row of the visible page.
type Row struct {
	ID      string
	Cells   []Cell
	Editing bool
	Failed  bool
}

// Snapshot is a consistent view of a table for rendering.
type Snapshot struct {
	Schema       *Schema
	Rows         []Row
	Count        int
	Page         int
	TotalPages   int
	PageSize     int
	EditingID    string
	DeleteTarget string
	Status       *Status
}

func (s Snapshot) HasPrevious() bool { return s.Page > 1 }
func (s Snapshot) HasNext() bool     { return s.Page < s.TotalPages }

// Snapshot captures the visible page together with edit, gate and status
// state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := t.store.Len()
	visible := t.store.window(t.pager.Bounds(count))
	editing := t.editor.RowID()

	rows := make([]Row, 0, len(visible))
	for _, r := range visible {
		row := Row{ID: r.ID, Editing: r.ID == editing, Failed: t.editor.Failed(r.ID)}
		for _, c := range t.schema.Columns {
			cell := Cell{Column: c, Value: r.Value(c.Label)}
			if row.Editing && c.Editable {
				cell.Input = true
				cell.Value = t.editor.Value(c.Label)
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}

	snap := Snapshot{
		Schema:     t.schema,
		Rows:       rows,
		Count:      count,
		Page:       t.pager.Current(),
		TotalPages: t.pager.TotalPages(count),
		PageSize:   t.pager.PageSize(),
		EditingID:  editing,
		Status:     t.activeStatus(),
	}
	if t.gate.State() == GateOpen {
		snap.DeleteTarget = t.gate.RowID()
	}
	return snap
}
