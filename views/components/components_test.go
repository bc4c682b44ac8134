package components

import (
	"bytes"
	"context"
	"testing"
	"time"

	"farmdash/internal/farm"
	"farmdash/internal/report"
	"farmdash/internal/table"
	"farmdash/views/models"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func column(t *testing.T, field string) table.Column {
	t.Helper()
	schema, err := farm.Lookup(farm.FeedUsage)
	require.NoError(t, err)
	c, ok := schema.ColumnByField(field)
	require.True(t, ok)
	return c
}

func TestInput(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		editURL  string
		contains []string
		excludes []string
	}{
		{
			name:     "dropdown marks the stored option",
			field:    "feed_type",
			value:    "Grower",
			contains: []string{`<select id="x" name="feed_type">`, `<option value="Grower" selected>Grower Feed</option>`},
			excludes: []string{`hx-post`},
		},
		{
			name:     "placeholder renders empty",
			field:    "qty",
			value:    table.Placeholder,
			contains: []string{`type="number"`, `step="any"`, `value=""`},
		},
		{
			name:     "edit url posts on change",
			field:    "qty",
			value:    "9",
			editURL:  "/t/feed-usage/edit/field",
			contains: []string{`value="9"`, `hx-post="/t/feed-usage/edit/field" hx-trigger="change" hx-swap="none"`},
		},
		{
			name:     "unknown dropdown value selects nothing",
			field:    "feed_type",
			value:    "Pellets",
			editURL:  "/t/feed-usage/edit/field",
			contains: []string{`<option value="">Select</option>`},
			excludes: []string{" selected"},
		},
		{
			name:     "value is escaped",
			field:    "qty",
			value:    `"><b>`,
			contains: []string{`value="&#34;&gt;&lt;b&gt;"`},
			excludes: []string{`"><b>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, Input(column(t, tt.field), "x", tt.value, tt.editURL))
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestPager(t *testing.T) {
	schema, err := farm.Lookup(farm.FeedUsage)
	require.NoError(t, err)

	assert.Empty(t, render(t, Pager("/t/feed-usage", table.Snapshot{Schema: schema, Page: 1, TotalPages: 1})))

	html := render(t, Pager("/t/feed-usage", table.Snapshot{Schema: schema, Page: 1, TotalPages: 3}))
	assert.Contains(t, html, `hx-post="/t/feed-usage/page/0" disabled>Previous`)
	assert.Contains(t, html, `<button class="btn current" hx-post="/t/feed-usage/page/1">1</button>`)
	assert.Contains(t, html, `hx-post="/t/feed-usage/page/2">Next`)
}

func TestStatusBanner(t *testing.T) {
	html := render(t, StatusBanner("/t/feed-usage", table.Status{
		Kind:      table.StatusError,
		Message:   "Failed to add <feed>.",
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	assert.Contains(t, html, `class="status status-error"`)
	assert.Contains(t, html, "Failed to add &lt;feed&gt;.")
	assert.Contains(t, html, `hx-get="/t/feed-usage/panel"`)
}

func TestReport_ExportLinksKeepRange(t *testing.T) {
	schema, err := farm.Lookup(farm.FeedUsage)
	require.NoError(t, err)
	rep := report.Build(schema, nil, report.Range{})

	html := render(t, Report(models.ReportView{Report: rep, From: "2024-01-02", To: "2024-01-31"}))
	for _, want := range []string{
		`href="/reports/feed-usage/export.csv?from=2024-01-02&amp;to=2024-01-31" download>Export CSV`,
		`href="/reports/feed-usage/export.xlsx?from=2024-01-02&amp;to=2024-01-31" download>Export Excel`,
		`href="/reports/feed-usage/export.pdf?from=2024-01-02&amp;to=2024-01-31" download>Export PDF`,
	} {
		assert.Contains(t, html, want)
	}

	html = render(t, Report(models.ReportView{Report: rep}))
	assert.Contains(t, html, `href="/reports/feed-usage/export.pdf" download`)
}
