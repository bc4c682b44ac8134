package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InputKind selects the editor control rendered for a column.
type InputKind string

const (
	KindText     InputKind = "text"
	KindNumber   InputKind = "number"
	KindDate     InputKind = "date"
	KindTime     InputKind = "time"
	KindDropdown InputKind = "dropdown"
)

// Placeholder is displayed for absent optional values and is never sent to
// the backend.
const Placeholder = "-"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Option is one allowed value of a dropdown column.
type Option struct {
	Label string
	Value string
}

// Column declares how one display column maps to a remote field and how it
// is edited.
type Column struct {
	Label    string
	Field    string
	Kind     InputKind
	Editable bool
	Required bool
	Integer  bool
	Options  []Option
}

// Allows reports whether v is acceptable for a dropdown column. Non-dropdown
// columns accept anything.
func (c Column) Allows(v string) bool {
	if c.Kind != KindDropdown {
		return true
	}
	for _, o := range c.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// OptionLabel returns the human label for a dropdown value.
func (c Column) OptionLabel(v string) string {
	for _, o := range c.Options {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// Parse converts display text into the value sent to the backend.
func (c Column) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch c.Kind {
	case KindNumber:
		if c.Integer {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, invalid(c.Label, "%s must be a whole number.", c.Label)
			}
			return n, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalid(c.Label, "%s must be a number.", c.Label)
		}
		return f, nil
	case KindDate:
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return nil, invalid(c.Label, "%s must be a date (YYYY-MM-DD).", c.Label)
		}
		return raw, nil
	case KindTime:
		if _, err := time.Parse(TimeLayout, raw); err != nil {
			if _, err := time.Parse("15:04:05", raw); err != nil {
				return nil, invalid(c.Label, "%s must be a time (HH:MM).", c.Label)
			}
		}
		return raw, nil
	case KindDropdown:
		if !c.Allows(raw) {
			return nil, invalid(c.Label, "%s must be one of %s.", c.Label, strings.Join(c.values(), ", "))
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// Format renders a remote value as display text.
func (c Column) Format(v any) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case string:
		if x == "" {
			return Placeholder
		}
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func (c Column) values() []string {
	out := make([]string, len(c.Options))
	for i, o := range c.Options {
		out[i] = o.Value
	}
	return out
}

// Mode tells the translation whether a full or a partial document is built.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// Schema is the static column declaration of one category.
type Schema struct {
	Category string
	Title    string
	Noun     string
	Path     string
	Columns  []Column
}

func (s *Schema) Column(label string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Label == label {
			return c, true
		}
	}
	return Column{}, false
}

// Editable reports whether the labelled column accepts edits. Unknown labels
// are not editable.
func (s *Schema) Editable(label string) bool {
	c, ok := s.Column(label)
	return ok && c.Editable
}

func (s *Schema) ColumnByField(field string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

func (s *Schema) Labels() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Label
	}
	return out
}

// DateColumn returns the first date column, used for range filtering.
func (s *Schema) DateColumn() (Column, bool) {
	for _, c := range s.Columns {
		if c.Kind == KindDate {
			return c, true
		}
	}
	return Column{}, false
}

// ToDocument translates display values into a remote document. Optional
// values that are empty or the placeholder are omitted. In ModeCreate any
// missing required value fails the whole document; in ModeUpdate only the
// labels present in values are considered.
func (s *Schema) ToDocument(values map[string]string, mode Mode) (map[string]any, error) {
	doc := make(map[string]any, len(s.Columns))
	var missing []string
	for _, c := range s.Columns {
		raw, present := values[c.Label]
		if !present && mode == ModeUpdate {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == Placeholder {
			if c.Required {
				missing = append(missing, c.Label)
			}
			continue
		}
		v, err := c.Parse(raw)
		if err != nil {
			return nil, err
		}
		doc[c.Field] = v
	}
	if len(missing) > 0 {
		if mode == ModeCreate {
			return nil, &ValidationError{Label: missing[0], Message: "All fields are required."}
		}
		return nil, invalid(missing[0], "%s is required.", missing[0])
	}
	return doc, nil
}

// FromDocument translates a remote document into a display record. The
// document must carry an id.
func (s *Schema) FromDocument(doc map[string]any) (Record, error) {
	id := FormatID(doc["id"])
	if id == "" {
		return Record{}, fmt.Errorf("%s document without id", s.Category)
	}
	values := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		values[c.Label] = c.Format(doc[c.Field])
	}
	return Record{ID: id, Values: values}, nil
}

// Normalize re-parses a remote document through the column table so the
// backend stores the same shapes the dashboard sends. Unknown fields are
// dropped.
func (s *Schema) Normalize(doc map[string]any, mode Mode) (map[string]any, error) {
	values := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		v, ok := doc[c.Field]
		if !ok {
			continue
		}
		values[c.Label] = c.Format(v)
	}
	return s.ToDocument(values, mode)
}

// FormatID renders a string or numeric id.
func FormatID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
