package table

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

func feedSchema() *Schema {
	return &Schema{
		Category: "feed",
		Title:    "Feed Usage",
		Noun:     "feed usage",
		Path:     "feed-usage",
		Columns: []Column{
			{Label: "Feed Type", Field: "feed_type", Kind: KindDropdown, Editable: true, Required: true, Options: []Option{
				{Label: "Starter Feed", Value: "Starter"},
				{Label: "Grower Feed", Value: "Grower"},
				{Label: "Finisher Feed", Value: "Finisher"},
				{Label: "Layer Feed", Value: "Layer"},
			}},
			{Label: "Quantity (kg)", Field: "qty", Kind: KindNumber, Editable: true, Required: true},
			{Label: "Time of Feeding", Field: "time_of_feeding", Kind: KindTime, Editable: true, Required: true},
			{Label: "Date", Field: "feed_date", Kind: KindDate, Editable: true, Required: true},
			{Label: "Notes", Field: "notes", Kind: KindText, Editable: true},
		},
	}
}

func feedDoc(id int, qty float64) map[string]any {
	return map[string]any{
		"id":              strconv.Itoa(id),
		"feed_type":       "Starter",
		"qty":             qty,
		"feed_date":       "2024-01-01",
		"time_of_feeding": "08:00",
	}
}

// stubRemote is an in-memory Remote with injectable failures.
type stubRemote struct {
	mu      sync.Mutex
	docs    []map[string]any
	nextID  int
	err     error
	calls   map[Op]int
	updates []map[string]any
	// block, when set, is waited on by List before answering.
	block chan struct{}
}

func newStubRemote(docs ...map[string]any) *stubRemote {
	return &stubRemote{docs: docs, nextID: 100, calls: make(map[Op]int)}
}

func (s *stubRemote) count(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubRemote) List(ctx context.Context) ([]map[string]any, error) {
	s.mu.Lock()
	s.calls[OpFetch]++
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]map[string]any, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

func (s *stubRemote) Create(ctx context.Context, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[OpCreate]++
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	created := map[string]any{"id": s.nextID}
	for k, v := range doc {
		created[k] = v
	}
	s.docs = append(s.docs, created)
	return created, nil
}

func (s *stubRemote) Update(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[OpUpdate]++
	s.updates = append(s.updates, doc)
	if s.err != nil {
		return nil, s.err
	}
	for _, d := range s.docs {
		if FormatID(d["id"]) == id {
			for k, v := range doc {
				d[k] = v
			}
			return d, nil
		}
	}
	return nil, &RemoteError{Status: 404, Message: "record not found"}
}

func (s *stubRemote) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[OpDelete]++
	if s.err != nil {
		return s.err
	}
	for i, d := range s.docs {
		if FormatID(d["id"]) == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return &RemoteError{Status: 404, Message: "record not found"}
}

func (s *stubRemote) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

var errNetwork = errors.New("dial tcp: connection refused")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTable(remote Remote, pageSize int, clock *fakeClock) *Table {
	return New(feedSchema(), remote, Options{PageSize: pageSize, Clock: clock.Now})
}
