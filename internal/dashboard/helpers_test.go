package dashboard

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"farmdash/internal/farm"
	"farmdash/internal/settings"
	"farmdash/internal/table"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memRemote is an in-memory collection. When gate is set, List signals
// started and waits on gate.
type memRemote struct {
	mu      sync.Mutex
	docs    []map[string]any
	nextID  int
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (m *memRemote) List(ctx context.Context) ([]map[string]any, error) {
	m.mu.Lock()
	started, gate := m.started, m.gate
	m.mu.Unlock()
	if gate != nil {
		started <- struct{}{}
		<-gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]map[string]any, 0, len(m.docs))
	for _, d := range m.docs {
		cp := make(map[string]any, len(d))
		for k, v := range d {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *memRemote) Create(ctx context.Context, doc map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	doc["id"] = strconv.Itoa(m.nextID)
	m.docs = append(m.docs, doc)
	return doc, nil
}

func (m *memRemote) Update(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.docs {
		if d["id"] == id {
			for k, v := range doc {
				d[k] = v
			}
			return d, nil
		}
	}
	return nil, &table.RemoteError{Status: 404, Message: "record not found"}
}

func (m *memRemote) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, d := range m.docs {
		if d["id"] == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return &table.RemoteError{Status: 404, Message: "record not found"}
}

func (m *memRemote) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

var errDown = errors.New("connection refused")

// backend holds one memRemote per category.
type backend map[string]*memRemote

func newBackend() backend {
	b := backend{}
	for _, s := range farm.Schemas() {
		b[s.Category] = &memRemote{}
	}
	return b
}

func (b backend) source(s *table.Schema) table.Remote {
	return b[s.Category]
}

func (b backend) board() *Board {
	return NewBoard(farm.Schemas(), func(s *table.Schema) *table.Table {
		return table.New(s, b.source(s), table.Options{})
	})
}

func feedDoc(id, date string, qty int) map[string]any {
	return map[string]any{
		"id": id, "feed_type": "Starter", "qty": qty, "time_of_feeding": "08:00", "feed_date": date,
	}
}

// memSettings keeps the farm settings in memory.
type memSettings struct {
	mu    sync.Mutex
	saved *settings.Settings
	err   error
}

func (m *memSettings) Get(ctx context.Context) (*settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.saved == nil {
		d := settings.Default()
		return &d, nil
	}
	cp := *m.saved
	return &cp, nil
}

func (m *memSettings) Update(ctx context.Context, p settings.Patch) (*settings.Settings, error) {
	current, err := m.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := p.Apply(*current)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &next
	return &next, nil
}
