//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path ..

package components

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"farmdash/internal/report"
	"farmdash/internal/table"
	"farmdash/views/models"

	"github.com/a-h/templ"
)

var exportFormats = []report.Format{report.FormatCSV, report.FormatXLSX, report.FormatPDF}

func basePath(schema *table.Schema) string {
	return "/t/" + schema.Path
}

func rowPath(base, id string) string {
	return base + "/records/" + url.PathEscape(id)
}

func pagePath(base string, page int) string {
	return base + "/page/" + strconv.Itoa(page)
}

func classes(cs ...string) string {
	var kept []string
	for _, c := range cs {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}

func tabClass(active bool) string {
	if active {
		return "tab active"
	}
	return "tab"
}

func pageClass(current bool) string {
	if current {
		return "btn current"
	}
	return "btn"
}

func rowClass(r table.Row) string {
	var editing, failed string
	if r.Editing {
		editing = "editing"
	}
	if r.Failed {
		failed = "failed"
	}
	return classes(editing, failed)
}

func statusClass(kind table.StatusKind) string {
	if kind == table.StatusError {
		return "status status-error"
	}
	return "status status-success"
}

func settingsStatusClass(failed bool) string {
	if failed {
		return statusClass(table.StatusError)
	}
	return statusClass(table.StatusSuccess)
}

// reloadTrigger fires just after the status message expires.
func reloadTrigger(expires time.Time) string {
	ttl := max(time.Until(expires), 0)
	return "load delay:" + strconv.FormatInt(ttl.Milliseconds()+50, 10) + "ms"
}

func inputType(c table.Column) string {
	switch c.Kind {
	case table.KindNumber:
		return "number"
	case table.KindDate:
		return "date"
	case table.KindTime:
		return "time"
	}
	return "text"
}

func inputStep(c table.Column) string {
	switch {
	case c.Kind != table.KindNumber:
		return ""
	case c.Integer:
		return "1"
	}
	return "any"
}

func inputValue(v string) string {
	if v == table.Placeholder {
		return ""
	}
	return v
}

func exportLabel(f report.Format) string {
	switch f {
	case report.FormatXLSX:
		return "Excel"
	case report.FormatPDF:
		return "PDF"
	}
	return strings.ToUpper(string(f))
}

// exportURL keeps the report's date range on the download link.
func exportURL(v models.ReportView, f report.Format) templ.SafeURL {
	q := url.Values{}
	if v.From != "" {
		q.Set("from", v.From)
	}
	if v.To != "" {
		q.Set("to", v.To)
	}
	href := "/reports/" + v.Report.Schema.Path + "/export." + f.Ext()
	if len(q) > 0 {
		href += "?" + q.Encode()
	}
	return templ.URL(href)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
