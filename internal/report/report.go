// Package report turns a category's records into date-filtered tables, CSV
// exports, key metrics and Markdown summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"farmdash/internal/table"
)

// Range is an inclusive day range. A zero bound is open.
type Range struct {
	From time.Time
	To   time.Time
}

// ParseRange reads YYYY-MM-DD bounds; empty strings leave a side open.
func ParseRange(from, to string) (Range, error) {
	var rng Range
	var err error
	if from != "" {
		if rng.From, err = time.Parse(table.DateLayout, from); err != nil {
			return Range{}, fmt.Errorf("parse from date %q: %w", from, err)
		}
	}
	if to != "" {
		if rng.To, err = time.Parse(table.DateLayout, to); err != nil {
			return Range{}, fmt.Errorf("parse to date %q: %w", to, err)
		}
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return Range{}, fmt.Errorf("date range ends before it starts: %s > %s", from, to)
	}
	return rng, nil
}

func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains compares calendar days only.
func (r Range) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.From.IsZero() && day.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(truncateDay(r.To)) {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.IsZero():
		return "all dates"
	case r.To.IsZero():
		return "from " + r.From.Format(table.DateLayout)
	case r.From.IsZero():
		return "until " + r.To.Format(table.DateLayout)
	default:
		return r.From.Format(table.DateLayout) + " to " + r.To.Format(table.DateLayout)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Filter keeps the records whose date column falls inside rng. With an open
// range every record is kept; otherwise records with no readable date are
// dropped.
func Filter(schema *table.Schema, records []table.Record, rng Range) []table.Record {
	col, ok := schema.DateColumn()
	if !ok || rng.IsZero() {
		return append([]table.Record(nil), records...)
	}
	var out []table.Record
	for _, r := range records {
		day, err := time.Parse(table.DateLayout, r.Value(col.Label))
		if err != nil {
			continue
		}
		if rng.Contains(day) {
			out = append(out, r)
		}
	}
	return out
}

// Report is one category's records pivoted into display rows.
type Report struct {
	Schema  *table.Schema
	Range   Range
	Columns []string
	Rows    [][]string
	Metrics []Metric
}

// Build filters records and lays them out with one column per schema label.
// Dropdown values are shown with their option label.
func Build(schema *table.Schema, records []table.Record, rng Range) *Report {
	kept := Filter(schema, records, rng)
	rep := &Report{
		Schema:  schema,
		Range:   rng,
		Columns: schema.Labels(),
		Rows:    make([][]string, 0, len(kept)),
		Metrics: Metrics(schema, kept),
	}
	for _, r := range kept {
		row := make([]string, len(schema.Columns))
		for i, c := range schema.Columns {
			v := r.Value(c.Label)
			if c.Kind == table.KindDropdown && v != table.Placeholder {
				v = c.OptionLabel(v)
			}
			row[i] = v
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

// WriteCSV writes a header row then every report row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(r.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// Filename is the suggested download name, e.g. feed-usage-2024-01-01.csv.
func (r *Report) Filename(ext string) string {
	name := r.Schema.Path
	if !r.Range.From.IsZero() {
		name += "-" + r.Range.From.Format(table.DateLayout)
	}
	if !r.Range.To.IsZero() {
		name += "-" + r.Range.To.Format(table.DateLayout)
	}
	return name + "." + ext
}
