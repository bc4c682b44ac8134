package table

// Store is the ordered, in-memory record list of one category. It never
// talks to the network; callers synchronise it with remote results.
type Store struct {
	records []Record
}

func NewStore(records ...Record) *Store {
	s := &Store{}
	s.ReplaceAll(records)
	return s
}

// ReplaceAll swaps in a complete list. Later duplicates of an id are dropped
// so ids stay unique.
func (s *Store) ReplaceAll(records []Record) {
	seen := make(map[string]struct{}, len(records))
	next := make([]Record, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		next = append(next, r.Clone())
	}
	s.records = next
}

// Append adds r at the end. An existing row with the same id is replaced in
// place instead.
func (s *Store) Append(r Record) {
	if s.ReplaceByID(r.ID, r) {
		return
	}
	s.records = append(s.records, r.Clone())
}

// ReplaceByID swaps the row with the given id. It reports false and changes
// nothing when the id is unknown.
func (s *Store) ReplaceByID(id string, r Record) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	r = r.Clone()
	r.ID = id
	s.records[i] = r
	return true
}

// RemoveByID drops the row with the given id, if any.
func (s *Store) RemoveByID(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i:i], s.records[i+1:]...)
	return true
}

func (s *Store) Get(id string) (Record, bool) {
	i := s.index(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i].Clone(), true
}

func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the list in store order.
func (s *Store) Records() []Record {
	return s.window(0, len(s.records))
}

func (s *Store) window(from, to int) []Record {
	if from < 0 {
		from = 0
	}
	if to > len(s.records) {
		to = len(s.records)
	}
	if from >= to {
		return []Record{}
	}
	out := make([]Record, 0, to-from)
	for _, r := range s.records[from:to] {
		out = append(out, r.Clone())
	}
	return out
}

func (s *Store) index(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
