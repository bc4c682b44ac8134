package models

import (
	"farmdash/internal/report"
	"farmdash/internal/settings"
	"farmdash/internal/table"
)

// TabView is one category tab in the dashboard header
type TabView struct {
	Category string
	Path     string
	Title    string
	Active   bool
}

// FormView holds the create form's last submitted values, keyed by field
type FormView struct {
	Values map[string]string
}

// PanelView is everything shown for the active category
type PanelView struct {
	Snapshot table.Snapshot
	Metrics  []report.Metric
	Form     FormView
	// Notes maps row id to Markdown-rendered HTML for the Notes cell
	Notes map[string]string
}

// DashboardView is the full dashboard page
type DashboardView struct {
	Tabs  []TabView
	Panel PanelView
}

// ReportView is the report page for one category
type ReportView struct {
	Tabs   []TabView
	Report *report.Report
	From   string
	To     string
	HTML   string
}

// SettingsView is the farm settings page and its save result
type SettingsView struct {
	Tabs     []TabView
	Settings settings.Settings
	Message  string
	Failed   bool
}
