// Package farm declares the four record categories of the poultry dashboard
// and their column tables.
package farm

import (
	"errors"
	"fmt"

	"farmdash/internal/table"
)

var ErrUnknownCategory = errors.New("unknown category")

// Category identifiers, also used as tab names.
const (
	FeedUsage     = "feed"
	Mortality     = "mortality"
	EggProduction = "eggs"
	Environment   = "environment"
)

var feedTypes = []table.Option{
	{Label: "Starter Feed", Value: "Starter"},
	{Label: "Grower Feed", Value: "Grower"},
	{Label: "Finisher Feed", Value: "Finisher"},
	{Label: "Layer Feed", Value: "Layer"},
}

var causesOfDeath = []table.Option{
	{Label: "Disease", Value: "Disease"},
	{Label: "Injury", Value: "injury"},
	{Label: "Predator", Value: "Predator"},
	{Label: "Unknown", Value: "Unknown"},
}

var schemas = []*table.Schema{
	{
		Category: FeedUsage,
		Title:    "Feed Usage",
		Noun:     "feed usage",
		Path:     "feed-usage",
		Columns: []table.Column{
			{Label: "Feed Type", Field: "feed_type", Kind: table.KindDropdown, Editable: true, Required: true, Options: feedTypes},
			{Label: "Quantity (kg)", Field: "qty", Kind: table.KindNumber, Editable: true, Required: true},
			{Label: "Time of Feeding", Field: "time_of_feeding", Kind: table.KindTime, Editable: true, Required: true},
			{Label: "Date", Field: "feed_date", Kind: table.KindDate, Editable: true, Required: true},
			{Label: "Notes", Field: "notes", Kind: table.KindText, Editable: true},
		},
	},
	{
		Category: Mortality,
		Title:    "Mortality Rates",
		Noun:     "mortality rate",
		Path:     "mortality-rate",
		Columns: []table.Column{
			{Label: "Number of Deaths", Field: "no_of_deaths", Kind: table.KindNumber, Integer: true, Editable: true, Required: true},
			{Label: "Cause of Death", Field: "cause_of_death", Kind: table.KindDropdown, Editable: true, Required: true, Options: causesOfDeath},
			{Label: "Location", Field: "location_farm", Kind: table.KindText, Editable: true},
			{Label: "Date", Field: "mortality_date", Kind: table.KindDate, Editable: true, Required: true},
			{Label: "Notes", Field: "notes", Kind: table.KindText, Editable: true},
		},
	},
	{
		Category: EggProduction,
		Title:    "Egg Production",
		Noun:     "egg production",
		Path:     "egg-production",
		Columns: []table.Column{
			{Label: "Total Eggs", Field: "total_eggs", Kind: table.KindNumber, Integer: true, Editable: true, Required: true},
			{Label: "Broken Eggs", Field: "broken_eggs", Kind: table.KindNumber, Integer: true, Editable: true, Required: true},
			{Label: "Collection Time", Field: "collection_time", Kind: table.KindTime, Editable: true, Required: true},
			{Label: "Date", Field: "collection_date", Kind: table.KindDate, Editable: true, Required: true},
			{Label: "Notes", Field: "notes", Kind: table.KindText, Editable: true},
		},
	},
	{
		Category: Environment,
		Title:    "Environment Control",
		Noun:     "environment data",
		Path:     "environment",
		Columns: []table.Column{
			{Label: "Temperature", Field: "temperature", Kind: table.KindNumber, Editable: true, Required: true},
			{Label: "Humidity", Field: "humidity", Kind: table.KindNumber, Editable: true, Required: true},
			{Label: "Time", Field: "collection_time", Kind: table.KindTime, Editable: true, Required: true},
			{Label: "Date", Field: "collection_date", Kind: table.KindDate, Editable: true, Required: true},
		},
	},
}

// Schemas returns the categories in tab order.
func Schemas() []*table.Schema {
	out := make([]*table.Schema, len(schemas))
	copy(out, schemas)
	return out
}

// Lookup finds a schema by category id or by its URL path.
func Lookup(key string) (*table.Schema, error) {
	for _, s := range schemas {
		if s.Category == key || s.Path == key {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}
