package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Remote is the backend collection for one category.
type Remote interface {
	List(ctx context.Context) ([]map[string]any, error)
	Create(ctx context.Context, doc map[string]any) (map[string]any, error)
	Update(ctx context.Context, id string, doc map[string]any) (map[string]any, error)
	Delete(ctx context.Context, id string) error
}

// Op names a dispatched command.
type Op string

const (
	OpCreate Op = "create"
	OpFetch  Op = "fetch"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Dispatcher turns row intents into remote calls and translates between
// display records and remote documents. It does not touch the store.
type Dispatcher struct {
	schema *Schema
	remote Remote
}

func NewDispatcher(schema *Schema, remote Remote) *Dispatcher {
	return &Dispatcher{schema: schema, remote: remote}
}

// Create validates values locally, then posts them.
func (d *Dispatcher) Create(ctx context.Context, values map[string]string) (Record, error) {
	doc, err := d.schema.ToDocument(values, ModeCreate)
	if err != nil {
		return Record{}, err
	}
	created, err := d.remote.Create(ctx, doc)
	if err != nil {
		return Record{}, err
	}
	return d.schema.FromDocument(created)
}

func (d *Dispatcher) FetchAll(ctx context.Context) ([]Record, error) {
	docs, err := d.remote.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(docs))
	for _, doc := range docs {
		r, err := d.schema.FromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Update sends the translated row. Placeholder values are left out rather
// than sent as empty strings. A response without a body falls back to the
// values that were sent.
func (d *Dispatcher) Update(ctx context.Context, id string, values map[string]string) (Record, error) {
	doc, err := d.schema.ToDocument(values, ModeUpdate)
	if err != nil {
		return Record{}, err
	}
	updated, err := d.remote.Update(ctx, id, doc)
	if err != nil {
		return Record{}, err
	}
	if len(updated) == 0 {
		return Record{ID: id, Values: values}.Clone(), nil
	}
	if _, ok := updated["id"]; !ok {
		updated["id"] = id
	}
	return d.schema.FromDocument(updated)
}

func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	return d.remote.Delete(ctx, id)
}

// ErrorMessage picks the banner text for a failed command: the validation
// message, the server's message, or a generic fallback.
func (d *Dispatcher) ErrorMessage(op Op, err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *RemoteError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	if op == OpFetch {
		return fmt.Sprintf("Failed to fetch %s records.", d.schema.Noun)
	}
	return fmt.Sprintf("Failed to %s %s.", op, d.schema.Noun)
}

func (d *Dispatcher) SuccessMessage(op Op) string {
	noun := capitalize(d.schema.Noun)
	switch op {
	case OpCreate:
		return noun + " recorded successfully."
	case OpUpdate:
		return noun + " updated successfully."
	case OpDelete:
		return noun + " deleted successfully."
	default:
		return noun + " loaded."
	}
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
