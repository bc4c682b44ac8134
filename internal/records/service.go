package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmdash/internal/farm"
	"farmdash/internal/table"
)

type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Create validates doc against the category's columns and stores it
func (s *Service) Create(ctx context.Context, category string, doc map[string]any) (*Record, error) {
	schema, err := farm.Lookup(category)
	if err != nil {
		return nil, err
	}
	fields, err := schema.Normalize(doc, table.ModeCreate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &Record{
		Category:  schema.Category,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID retrieves a record by ID
func (s *Service) GetByID(ctx context.Context, category, id string) (*Record, error) {
	schema, err := farm.Lookup(category)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, schema.Category, id)
}

// List retrieves records of one category in insertion order
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Record, error) {
	schema, err := farm.Lookup(q.Category)
	if err != nil {
		return nil, err
	}
	q.Category = schema.Category
	if c, ok := schema.DateColumn(); ok {
		q.DateField = c.Field
	}
	return s.repo.List(ctx, q)
}

// Update merges a partial document over the stored fields. Fields that are
// absent from doc keep their stored value.
func (s *Service) Update(ctx context.Context, category, id string, doc map[string]any) (*Record, error) {
	schema, err := farm.Lookup(category)
	if err != nil {
		return nil, err
	}
	changes, err := schema.Normalize(doc, table.ModeUpdate)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.FindByID(ctx, schema.Category, id)
	if err != nil {
		return nil, err
	}
	for k, v := range changes {
		rec.Fields[k] = v
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record by ID
func (s *Service) Delete(ctx context.Context, category, id string) error {
	schema, err := farm.Lookup(category)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, schema.Category, id)
}

// Count returns the number of records in a category
func (s *Service) Count(ctx context.Context, category string) (int64, error) {
	schema, err := farm.Lookup(category)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, schema.Category)
}

// ListCategories returns every category with its record count
func (s *Service) ListCategories(ctx context.Context) ([]*CategorySummary, error) {
	var out []*CategorySummary
	for _, schema := range farm.Schemas() {
		n, err := s.repo.Count(ctx, schema.Category)
		if err != nil {
			return nil, err
		}
		out = append(out, &CategorySummary{
			Name:  schema.Category,
			Title: schema.Title,
			Path:  schema.Path,
			Count: n,
		})
	}
	return out, nil
}

// Resource adapts one category of the service to the table engine's Remote
// contract, for dashboards running in the same process.
func (s *Service) Resource(category string) *Resource {
	return &Resource{svc: s, category: category}
}

type Resource struct {
	svc      *Service
	category string
}

func (r *Resource) List(ctx context.Context) ([]map[string]any, error) {
	recs, err := r.svc.List(ctx, ListQuery{Category: r.category})
	if err != nil {
		return nil, remoteErr(err)
	}
	out := make([]map[string]any, len(recs))
	for i, rec := range recs {
		out[i] = rec.Document()
	}
	return out, nil
}

func (r *Resource) Create(ctx context.Context, doc map[string]any) (map[string]any, error) {
	rec, err := r.svc.Create(ctx, r.category, doc)
	if err != nil {
		return nil, remoteErr(err)
	}
	return rec.Document(), nil
}

func (r *Resource) Update(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	rec, err := r.svc.Update(ctx, r.category, id, doc)
	if err != nil {
		return nil, remoteErr(err)
	}
	return rec.Document(), nil
}

func (r *Resource) Delete(ctx context.Context, id string) error {
	return remoteErr(r.svc.Delete(ctx, r.category, id))
}

// remoteErr gives service failures the shape the HTTP handler would have
// produced, so in-process and remote dashboards show the same messages.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}
	status, msg := classify(err)
	if status >= 500 {
		return err
	}
	return &table.RemoteError{Status: status, Message: msg}
}

func classify(err error) (int, string) {
	var ve *table.ValidationError
	switch {
	case errors.As(err, &ve):
		return 400, ve.Message
	case errors.Is(err, farm.ErrUnknownCategory):
		return 404, "unknown category"
	case errors.Is(err, ErrRecordNotFound):
		return 404, "record not found"
	default:
		return 500, "internal error"
	}
}

// ToTable converts stored records into display records, keeping order.
func ToTable(schema *table.Schema, recs []*Record) ([]table.Record, error) {
	out := make([]table.Record, 0, len(recs))
	for _, rec := range recs {
		r, err := schema.FromDocument(rec.Document())
		if err != nil {
			return nil, fmt.Errorf("convert %s record %s: %w", schema.Category, rec.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// IsClientError reports whether err was caused by the request: bad input,
// an unknown category or a missing record.
func IsClientError(err error) bool {
	status, _ := classify(err)
	return status < 500
}

// ClientMessage is the text shown to API callers for err.
func ClientMessage(err error) string {
	_, msg := classify(err)
	return msg
}
