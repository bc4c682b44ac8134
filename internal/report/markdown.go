package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the report as a heading, a metrics list and a pipe table.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s report\n\n", r.Schema.Title)
	fmt.Fprintf(&b, "_%s, %d %s_\n\n", r.Range, len(r.Rows), plural(len(r.Rows), "entry", "entries"))

	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "- **%s:** %s\n", m.Title, escapeCell(m.Value))
	}
	b.WriteString("\n")

	if len(r.Rows) == 0 {
		b.WriteString("No records in range.\n")
		return b.String()
	}
	b.WriteString("| " + strings.Join(escapeAll(r.Columns), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(r.Columns)) + "\n")
	for _, row := range r.Rows {
		b.WriteString("| " + strings.Join(escapeAll(row), " | ") + " |\n")
	}
	return b.String()
}

// HTML renders the Markdown summary.
func (r *Report) HTML() (string, error) {
	return RenderMarkdown(r.Markdown())
}

// RenderMarkdown converts Markdown to HTML. Raw HTML in the input is not
// passed through.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
