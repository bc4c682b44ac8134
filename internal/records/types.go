package records

import (
	"encoding/json"
	"time"
)

// Record is one persisted row of a category, stored with its remote field
// names.
type Record struct {
	ID        string
	Category  string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document flattens the record into the wire shape: the fields plus id.
func (r *Record) Document() map[string]any {
	doc := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc["id"] = r.ID
	return doc
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Document())
}

// CategorySummary is aggregated info for one category
type CategorySummary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// ListQuery represents list parameters. Since and Until are inclusive
// YYYY-MM-DD bounds on the category's date field.
type ListQuery struct {
	Category  string
	DateField string
	Since     string
	Until     string
	Limit     int
	Offset    int
}

const maxListLimit = 500

func (q ListQuery) limit() int {
	if q.Limit <= 0 {
		return 0
	}
	if q.Limit > maxListLimit {
		return maxListLimit
	}
	return q.Limit
}

// offset never goes below zero; a negative skip is rejected by both stores.
func (q ListQuery) offset() int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}
