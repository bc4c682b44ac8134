package table

// Record is one table row: display values keyed by column label.
type Record struct {
	ID     string
	Values map[string]string
}

// Value returns the display value for label, or the placeholder when absent.
func (r Record) Value(label string) string {
	if v, ok := r.Values[label]; ok && v != "" {
		return v
	}
	return Placeholder
}

// Clone returns a deep copy so callers never share the Values map.
func (r Record) Clone() Record {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Record{ID: r.ID, Values: values}
}

// merge overlays changes on top of r.
func (r Record) merge(changes map[string]string) Record {
	out := r.Clone()
	for k, v := range changes {
		out.Values[k] = v
	}
	return out
}
