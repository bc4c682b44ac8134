// Package remote talks to a farmdash REST API over HTTP. Each category is
// exposed as a Resource that satisfies table.Remote; the farm settings are
// a SettingsResource.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farmdash/internal/settings"
	"farmdash/internal/table"

	"go.uber.org/zap"
)

const maxBody = 4 << 20

// Client is a thin JSON client for /api.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse api base url %q: invalid", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: u.String(),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

// Resource returns the collection served at /api/{path}.
func (c *Client) Resource(path string) *Resource {
	return &Resource{c: c, endpoint: c.base + "/api/" + url.PathEscape(path)}
}

type Resource struct {
	c        *Client
	endpoint string
}

func (r *Resource) List(ctx context.Context) ([]map[string]any, error) {
	var docs []map[string]any
	if err := r.c.do(ctx, http.MethodGet, r.endpoint, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *Resource) Create(ctx context.Context, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodPost, r.endpoint, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update returns an empty document when the server answers without a body.
func (r *Resource) Update(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := r.c.do(ctx, http.MethodPut, r.endpoint+"/"+url.PathEscape(id), doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.endpoint+"/"+url.PathEscape(id), nil, nil)
}

// Settings returns the farm settings served at /api/settings.
func (c *Client) Settings() *SettingsResource {
	return &SettingsResource{c: c, endpoint: c.base + "/api/settings"}
}

type SettingsResource struct {
	c        *Client
	endpoint string
}

func (s *SettingsResource) Get(ctx context.Context) (*settings.Settings, error) {
	var out settings.Settings
	if err := s.c.do(ctx, http.MethodGet, s.endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SettingsResource) Update(ctx context.Context, p settings.Patch) (*settings.Settings, error) {
	var out settings.Settings
	if err := s.c.do(ctx, http.MethodPut, s.endpoint, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("api call",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &table.RemoteError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of an error body. Anything
// else yields "" so the caller falls back to its own text.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// IsUnavailable reports whether err came from the transport rather than from
// a server response.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var re *table.RemoteError
	return !errors.As(err, &re) && !table.IsValidation(err)
}
