package records

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the REST API under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/{category}", h.ListRecords)
	mux.HandleFunc("POST /api/{category}", h.CreateRecord)
	mux.HandleFunc("GET /api/{category}/{id}", h.GetRecord)
	mux.HandleFunc("PUT /api/{category}/{id}", h.UpdateRecord)
	mux.HandleFunc("DELETE /api/{category}/{id}", h.DeleteRecord)
}

// CreateRecord handles POST /api/{category}
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Create(r.Context(), r.PathValue("category"), doc)
	if err != nil {
		h.fail(w, "failed to create record", err)
		return
	}

	h.jsonResponse(w, rec, http.StatusCreated)
}

// GetRecord handles GET /api/{category}/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetByID(r.Context(), r.PathValue("category"), r.PathValue("id"))
	if err != nil {
		h.fail(w, "failed to get record", err)
		return
	}

	h.jsonResponse(w, rec, http.StatusOK)
}

// ListRecords handles GET /api/{category}
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Category: r.PathValue("category"),
		Since:    r.URL.Query().Get("since"),
		Until:    r.URL.Query().Get("until"),
		Limit:    h.parseInt(r.URL.Query().Get("limit"), 0),
		Offset:   h.parseInt(r.URL.Query().Get("offset"), 0),
	}

	recs, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.fail(w, "failed to list records", err)
		return
	}
	if recs == nil {
		recs = []*Record{}
	}

	h.jsonResponse(w, recs, http.StatusOK)
}

// UpdateRecord handles PUT /api/{category}/{id}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decode(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Update(r.Context(), r.PathValue("category"), r.PathValue("id"), doc)
	if err != nil {
		h.fail(w, "failed to update record", err)
		return
	}

	h.jsonResponse(w, rec, http.StatusOK)
}

// DeleteRecord handles DELETE /api/{category}/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), r.PathValue("category"), r.PathValue("id"))
	if err != nil {
		h.fail(w, "failed to delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, "failed to list categories", err)
		return
	}

	h.jsonResponse(w, categories, http.StatusOK)
}

// --- Helper methods ---

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, 1<<20)); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return nil, false
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return nil, false
	}
	return doc, true
}

func (h *Handler) fail(w http.ResponseWriter, what string, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(what, zap.Error(err))
	} else {
		h.log.Debug(what, zap.Int("status", status), zap.String("reason", msg))
	}
	h.jsonError(w, msg, status)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
