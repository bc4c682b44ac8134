package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"farmdash/internal/farm"
	"farmdash/internal/report"
	"farmdash/internal/table"
	"farmdash/views/components"
	"farmdash/views/models"
	"farmdash/views/pages"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Source returns the backend collection for a category.
type Source func(schema *table.Schema) table.Remote

type Handler struct {
	sessions *Sessions
	source   Source
	settings SettingsStore
	log      *zap.Logger
}

// NewHandler serves the dashboard. The settings pages are mounted only when
// farmSettings is not nil.
func NewHandler(sessions *Sessions, source Source, farmSettings SettingsStore, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, source: source, settings: farmSettings, log: log}
}

// Register mounts the dashboard, report and settings pages.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HomePage)
	mux.HandleFunc("GET /tabs/{category}", h.SwitchTab)

	mux.HandleFunc("GET /t/{category}/panel", h.withTable(h.panel))
	mux.HandleFunc("POST /t/{category}/refresh", h.withTable(h.Refresh))
	mux.HandleFunc("POST /t/{category}/page/{page}", h.withTable(h.GoToPage))
	mux.HandleFunc("POST /t/{category}/records", h.withTable(h.CreateRecord))
	mux.HandleFunc("POST /t/{category}/records/{id}/edit", h.withTable(h.BeginEdit))
	mux.HandleFunc("POST /t/{category}/records/{id}/retry", h.withTable(h.RetryEdit))
	mux.HandleFunc("POST /t/{category}/records/{id}/delete", h.withTable(h.RequestDelete))
	mux.HandleFunc("POST /t/{category}/edit/field", h.withTable(h.EditField))
	mux.HandleFunc("POST /t/{category}/edit/commit", h.withTable(h.CommitEdit))
	mux.HandleFunc("POST /t/{category}/edit/cancel", h.withTable(h.CancelEdit))
	mux.HandleFunc("POST /t/{category}/delete/confirm", h.withTable(h.ConfirmDelete))
	mux.HandleFunc("POST /t/{category}/delete/cancel", h.withTable(h.CancelDelete))
	mux.HandleFunc("POST /t/{category}/status/dismiss", h.withTable(h.DismissStatus))

	mux.HandleFunc("GET /reports/{category}", h.ReportPage)
	mux.HandleFunc("GET /reports/{category}/export.csv", h.Export(report.FormatCSV))
	mux.HandleFunc("GET /reports/{category}/export.xlsx", h.Export(report.FormatXLSX))
	mux.HandleFunc("GET /reports/{category}/export.pdf", h.Export(report.FormatPDF))

	if h.settings != nil {
		mux.HandleFunc("GET /settings", h.SettingsPage)
		mux.HandleFunc("POST /settings", h.SaveSettings)
	}
}

type tableHandler func(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table)

func (h *Handler) withTable(next tableHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := h.sessions.Board(w, r)
		t, err := b.Table(r.PathValue("category"))
		if err != nil {
			http.Error(w, "unknown category", http.StatusNotFound)
			return
		}
		next(w, r, b, t)
	}
}

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	b := h.sessions.Board(w, r)
	t, err := b.Table(b.Active())
	if err != nil {
		http.Error(w, "no categories configured", http.StatusInternalServerError)
		return
	}
	h.ensure(r.Context(), b, t)
	h.render(w, r, pages.DashboardPage(h.dashboardView(b, t, nil)))
}

// SwitchTab handles GET /tabs/{category}
func (h *Handler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	b := h.sessions.Board(w, r)
	t, err := b.Switch(r.Context(), r.PathValue("category"))
	if errors.Is(err, farm.ErrUnknownCategory) {
		http.Error(w, "unknown category", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Warn("tab fetch failed", zap.String("category", t.Schema().Category), zap.Error(err))
	}
	view := h.dashboardView(b, t, nil)
	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, components.Dashboard(view))
		return
	}
	h.render(w, r, pages.DashboardPage(view))
}

func (h *Handler) panel(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	h.ensure(r.Context(), b, t)
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	if err := b.fetch(r.Context(), t); err != nil {
		h.log.Debug("refresh failed", zap.Error(err))
	}
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) GoToPage(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	t.GoTo(page)
	h.renderPanel(w, r, t, nil)
}

// CreateRecord keeps the submitted values in the form when the create is
// rejected.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	values, raw, ok := h.formValues(w, r, t.Schema(), true)
	if !ok {
		return
	}
	if _, err := t.Create(r.Context(), values); err != nil {
		h.renderPanel(w, r, t, raw)
		return
	}
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) BeginEdit(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	h.logState(t.BeginEdit(r.PathValue("id")), "begin edit")
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) RetryEdit(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	h.logState(t.Retry(r.PathValue("id")), "retry edit")
	h.renderPanel(w, r, t, nil)
}

// EditField buffers the posted fields without rendering. A rejected value
// retargets the response at the panel so the error banner shows.
func (h *Handler) EditField(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	values, _, ok := h.formValues(w, r, t.Schema(), false)
	if !ok {
		return
	}
	if err := h.applyEdits(t, values); err != nil {
		w.Header().Set("HX-Retarget", "#panel")
		w.Header().Set("HX-Reswap", "outerHTML")
		h.renderPanel(w, r, t, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommitEdit applies any fields sent along with the save, then commits.
func (h *Handler) CommitEdit(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	values, _, ok := h.formValues(w, r, t.Schema(), false)
	if !ok {
		return
	}
	if err := h.applyEdits(t, values); err != nil {
		h.renderPanel(w, r, t, nil)
		return
	}
	h.logState(stateErr(t.Commit(r.Context())), "commit edit")
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	t.Cancel()
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	h.logState(t.RequestDelete(r.PathValue("id")), "request delete")
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	h.logState(stateErr(t.ConfirmDelete(r.Context())), "confirm delete")
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	t.CancelDelete()
	h.renderPanel(w, r, t, nil)
}

func (h *Handler) DismissStatus(w http.ResponseWriter, r *http.Request, b *Board, t *table.Table) {
	t.DismissStatus()
	h.renderPanel(w, r, t, nil)
}

// ReportPage handles GET /reports/{category}
func (h *Handler) ReportPage(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	html, err := rep.HTML()
	if err != nil {
		h.log.Error("failed to render report", zap.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	h.render(w, r, pages.ReportPage(models.ReportView{
		Tabs:   tabs(farm.Schemas(), rep.Schema.Category),
		Report: rep,
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		HTML:   html,
	}))
}

// Export handles GET /reports/{category}/export.{csv,xlsx,pdf}
func (h *Handler) Export(format report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := h.buildReport(w, r)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := rep.Write(&buf, format); err != nil {
			h.log.Error("failed to export report", zap.String("format", string(format)), zap.Error(err))
			http.Error(w, "failed to export report", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename(format.Ext())+`"`)
		if _, err := buf.WriteTo(w); err != nil {
			h.log.Debug("export write aborted", zap.Error(err))
		}
	}
}

// --- Helper methods ---

func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	schema, err := farm.Lookup(r.PathValue("category"))
	if err != nil {
		http.Error(w, "unknown category", http.StatusNotFound)
		return nil, false
	}
	rng, err := report.ParseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	records, err := table.NewDispatcher(schema, h.source(schema)).FetchAll(r.Context())
	if err != nil {
		h.log.Warn("report fetch failed", zap.String("category", schema.Category), zap.Error(err))
		http.Error(w, "failed to load records", http.StatusBadGateway)
		return nil, false
	}
	return report.Build(schema, records, rng), true
}

// formValues reads posted inputs, named by remote field, into label-keyed
// values. With all set every editable column is present.
func (h *Handler) formValues(w http.ResponseWriter, r *http.Request, schema *table.Schema, all bool) (map[string]string, map[string]string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil, nil, false
	}
	values := make(map[string]string)
	raw := make(map[string]string)
	for _, c := range schema.Columns {
		if !c.Editable {
			continue
		}
		if _, sent := r.PostForm[c.Field]; !sent && !all {
			continue
		}
		v := r.PostForm.Get(c.Field)
		values[c.Label] = v
		raw[c.Field] = v
	}
	return values, raw, true
}

func (h *Handler) applyEdits(t *table.Table, values map[string]string) error {
	for _, c := range t.Schema().Columns {
		v, ok := values[c.Label]
		if !ok {
			continue
		}
		if err := t.EditField(c.Label, v); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) ensure(ctx context.Context, b *Board, t *table.Table) {
	if err := b.Ensure(ctx, t); err != nil {
		h.log.Debug("initial fetch failed", zap.String("category", t.Schema().Category), zap.Error(err))
	}
}

// logState records commands refused by table state. Those leave the table
// untouched and need no banner.
func (h *Handler) logState(err error, what string) {
	if err != nil {
		h.log.Debug(what+" ignored", zap.Error(err))
	}
}

// stateErr keeps the state refusals and drops errors already shown as a
// status banner.
func stateErr(err error) error {
	if errors.Is(err, table.ErrNotEditing) || errors.Is(err, table.ErrGateClosed) {
		return err
	}
	return nil
}

func (h *Handler) dashboardView(b *Board, t *table.Table, form map[string]string) models.DashboardView {
	return models.DashboardView{
		Tabs:  tabs(b.Schemas(), t.Schema().Category),
		Panel: h.panelView(t, form),
	}
}

func (h *Handler) panelView(t *table.Table, form map[string]string) models.PanelView {
	snap := t.Snapshot()
	notes := make(map[string]string)
	for _, row := range snap.Rows {
		for _, cell := range row.Cells {
			if cell.Column.Field != "notes" || cell.Input || cell.Value == table.Placeholder {
				continue
			}
			html, err := report.RenderMarkdown(cell.Value)
			if err != nil {
				continue
			}
			notes[row.ID] = html
		}
	}
	return models.PanelView{
		Snapshot: snap,
		Metrics:  report.Metrics(snap.Schema, t.Records()),
		Form:     models.FormView{Values: form},
		Notes:    notes,
	}
}

func (h *Handler) renderPanel(w http.ResponseWriter, r *http.Request, t *table.Table, form map[string]string) {
	h.render(w, r, components.Panel(h.panelView(t, form)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("failed to render", zap.Error(err))
	}
}

func tabs(schemas []*table.Schema, active string) []models.TabView {
	out := make([]models.TabView, len(schemas))
	for i, s := range schemas {
		out[i] = models.TabView{
			Category: s.Category,
			Path:     s.Path,
			Title:    s.Title,
			Active:   s.Category == active,
		}
	}
	return out
}
