package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farmdash/internal/farm"
	"farmdash/internal/records"
	"farmdash/internal/report"
	"farmdash/internal/settings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with tools over the farm records and
// the farm settings
func NewServer(svc *records.Service, farmSettings *settings.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Farm Dashboard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_categories - List all categories with counts
	s.AddTool(
		mcp.NewTool("list_categories",
			mcp.WithDescription("List the farm record categories (feed usage, mortality, egg production, environment) with their field names and record counts."),
		),
		handleListCategories(svc),
	)

	// Tool: list_records - Records of one category
	s.AddTool(
		mcp.NewTool("list_records",
			mcp.WithDescription("List records of one category in the order they were entered, optionally limited to a date range."),
			mcp.WithString("category",
				mcp.Required(),
				mcp.Description("Category name or path (e.g., 'feed', 'egg-production')"),
			),
			mcp.WithString("since",
				mcp.Description("Optional: first day to include (YYYY-MM-DD)"),
			),
			mcp.WithString("until",
				mcp.Description("Optional: last day to include (YYYY-MM-DD)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of records to return (default: 50, max: 500)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of records to skip for pagination (default: 0)"),
			),
		),
		handleListRecords(svc),
	)

	// Tool: get_record - Get one record
	s.AddTool(
		mcp.NewTool("get_record",
			mcp.WithDescription("Get a single record by its ID."),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name or path")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		),
		handleGetRecord(svc),
	)

	// Tool: create_record - Add a record
	s.AddTool(
		mcp.NewTool("create_record",
			mcp.WithDescription("Create a record. Every required field of the category must be present; use list_categories to see the fields."),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name or path")),
			mcp.WithString("fields",
				mcp.Required(),
				mcp.Description(`JSON object of field values, e.g. {"feed_type":"Starter","qty":12.5,"time_of_feeding":"08:00","feed_date":"2024-01-01"}`),
			),
		),
		handleCreateRecord(svc),
	)

	// Tool: update_record - Change some fields
	s.AddTool(
		mcp.NewTool("update_record",
			mcp.WithDescription("Update some fields of a record. Fields left out keep their value."),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name or path")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
			mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object of the fields to change")),
		),
		handleUpdateRecord(svc),
	)

	// Tool: delete_record - Remove a record
	s.AddTool(
		mcp.NewTool("delete_record",
			mcp.WithDescription("Permanently delete a record by its ID."),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name or path")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Record ID")),
		),
		handleDeleteRecord(svc),
	)

	// Tool: summarize_records - Markdown report
	s.AddTool(
		mcp.NewTool("summarize_records",
			mcp.WithDescription("Summarize a category as Markdown: key metrics (totals, averages, broken-egg rate) and a table of the records in the date range."),
			mcp.WithString("category", mcp.Required(), mcp.Description("Category name or path")),
			mcp.WithString("since", mcp.Description("Optional: first day to include (YYYY-MM-DD)")),
			mcp.WithString("until", mcp.Description("Optional: last day to include (YYYY-MM-DD)")),
		),
		handleSummarizeRecords(svc),
	)

	// Tool: get_settings - Farm profile and preferences
	s.AddTool(
		mcp.NewTool("get_settings",
			mcp.WithDescription("Get the farm settings: name, location, size, number of birds, notification channels, measuring unit and data retention period."),
		),
		handleGetSettings(farmSettings),
	)

	// Tool: update_settings - Change some settings
	s.AddTool(
		mcp.NewTool("update_settings",
			mcp.WithDescription("Update some farm settings. Settings left out keep their value."),
			mcp.WithString("fields",
				mcp.Required(),
				mcp.Description(`JSON object of settings to change, e.g. {"no_of_birds":1200,"measuring_unit":"Metric","data_retention_period":"1 Year"}`),
			),
		),
		handleUpdateSettings(farmSettings),
	)

	return s
}

// CategoryResult represents a category with its fields
type CategoryResult struct {
	Name   string        `json:"name"`
	Title  string        `json:"title"`
	Path   string        `json:"path"`
	Count  int64         `json:"count"`
	Fields []FieldResult `json:"fields"`
}

type FieldResult struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

func handleListCategories(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		categories, err := svc.ListCategories(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
		}

		results := make([]CategoryResult, len(categories))
		for i, cat := range categories {
			results[i] = CategoryResult{Name: cat.Name, Title: cat.Title, Path: cat.Path, Count: cat.Count}
			schema, err := farm.Lookup(cat.Name)
			if err != nil {
				continue
			}
			for _, c := range schema.Columns {
				f := FieldResult{Name: c.Field, Label: c.Label, Kind: string(c.Kind), Required: c.Required}
				for _, o := range c.Options {
					f.Options = append(f.Options, o.Value)
				}
				results[i].Fields = append(results[i].Fields, f)
			}
		}

		return jsonResult(results)
	}
}

func handleListRecords(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}

		limit := req.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		recs, err := svc.List(ctx, records.ListQuery{
			Category: category,
			Since:    req.GetString("since", ""),
			Until:    req.GetString("until", ""),
			Limit:    limit,
			Offset:   req.GetInt("offset", 0),
		})
		if err != nil {
			return toolError("failed to list records", err), nil
		}
		if recs == nil {
			recs = []*records.Record{}
		}

		return jsonResult(recs)
	}
}

func handleGetRecord(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, id, errResult := categoryAndID(req)
		if errResult != nil {
			return errResult, nil
		}

		rec, err := svc.GetByID(ctx, category, id)
		if err != nil {
			return toolError("failed to get record", err), nil
		}

		return jsonResult(rec)
	}
}

func handleCreateRecord(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}
		fields, errResult := fieldsArg(req)
		if errResult != nil {
			return errResult, nil
		}

		rec, err := svc.Create(ctx, category, fields)
		if err != nil {
			return toolError("failed to create record", err), nil
		}

		return jsonResult(rec)
	}
}

func handleUpdateRecord(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, id, errResult := categoryAndID(req)
		if errResult != nil {
			return errResult, nil
		}
		fields, errResult := fieldsArg(req)
		if errResult != nil {
			return errResult, nil
		}

		rec, err := svc.Update(ctx, category, id, fields)
		if err != nil {
			return toolError("failed to update record", err), nil
		}

		return jsonResult(rec)
	}
}

func handleDeleteRecord(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, id, errResult := categoryAndID(req)
		if errResult != nil {
			return errResult, nil
		}

		if err := svc.Delete(ctx, category, id); err != nil {
			return toolError("failed to delete record", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("deleted record %s", id)), nil
	}
}

func handleSummarizeRecords(svc *records.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}
		schema, err := farm.Lookup(category)
		if err != nil {
			return toolError("failed to summarize records", err), nil
		}
		rng, err := report.ParseRange(req.GetString("since", ""), req.GetString("until", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		recs, err := svc.List(ctx, records.ListQuery{Category: schema.Category})
		if err != nil {
			return toolError("failed to summarize records", err), nil
		}
		rows, err := records.ToTable(schema, recs)
		if err != nil {
			return toolError("failed to summarize records", err), nil
		}

		return mcp.NewToolResultText(report.Build(schema, rows, rng).Markdown()), nil
	}
}

func handleGetSettings(farmSettings *settings.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		current, err := farmSettings.Get(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get settings: %v", err)), nil
		}

		return jsonResult(current)
	}
}

func handleUpdateSettings(farmSettings *settings.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("fields")
		if err != nil {
			return mcp.NewToolResultError("fields is required"), nil
		}
		var p settings.Patch
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fields must be a JSON object of settings: %v", err)), nil
		}

		updated, err := farmSettings.Update(ctx, p)
		if settings.IsClientError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update settings: %v", err)), nil
		}

		return jsonResult(updated)
	}
}

// Helper functions

func categoryAndID(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	category, err := req.RequireString("category")
	if err != nil {
		return "", "", mcp.NewToolResultError("category is required")
	}
	id, err := req.RequireString("id")
	if err != nil {
		return "", "", mcp.NewToolResultError("id is required")
	}
	return category, id, nil
}

func fieldsArg(req mcp.CallToolRequest) (map[string]any, *mcp.CallToolResult) {
	raw, err := req.RequireString("fields")
	if err != nil {
		return nil, mcp.NewToolResultError("fields is required")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, mcp.NewToolResultError("fields must be a JSON object")
	}
	return fields, nil
}

// toolError shows validation and lookup failures as they are and hides
// everything else behind what.
func toolError(what string, err error) *mcp.CallToolResult {
	switch {
	case records.IsClientError(err):
		return mcp.NewToolResultError(records.ClientMessage(err))
	case errors.Is(err, context.Canceled):
		return mcp.NewToolResultError(what + ": cancelled")
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", what, err))
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
