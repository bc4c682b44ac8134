package farm

import (
	"testing"

	"farmdash/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	s, err := Lookup("feed-usage")
	require.NoError(t, err)
	assert.Equal(t, FeedUsage, s.Category)

	s, err = Lookup(Mortality)
	require.NoError(t, err)
	assert.Equal(t, "mortality-rate", s.Path)

	_, err = Lookup("chickens")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestSchemas_ColumnOrder(t *testing.T) {
	tests := map[string][]string{
		FeedUsage:     {"Feed Type", "Quantity (kg)", "Time of Feeding", "Date", "Notes"},
		Mortality:     {"Number of Deaths", "Cause of Death", "Location", "Date", "Notes"},
		EggProduction: {"Total Eggs", "Broken Eggs", "Collection Time", "Date", "Notes"},
		Environment:   {"Temperature", "Humidity", "Time", "Date"},
	}
	for category, want := range tests {
		s, err := Lookup(category)
		require.NoError(t, err)
		assert.Equal(t, want, s.Labels(), category)
	}
}

func TestSchemas_EveryCategoryHasDateColumnAndUniqueFields(t *testing.T) {
	for _, s := range Schemas() {
		_, ok := s.DateColumn()
		assert.True(t, ok, s.Category)

		seen := map[string]bool{}
		for _, c := range s.Columns {
			assert.False(t, seen[c.Field], "%s: duplicate field %s", s.Category, c.Field)
			seen[c.Field] = true
			if c.Kind == table.KindDropdown {
				assert.NotEmpty(t, c.Options, "%s: %s", s.Category, c.Label)
			}
		}
	}
}

func TestMortality_UpdateTranslation(t *testing.T) {
	s, _ := Lookup(Mortality)
	doc, err := s.ToDocument(map[string]string{
		"Number of Deaths": "3",
		"Cause of Death":   "injury",
		"Location":         "-",
		"Date":             "2024-05-01",
		"Notes":            "-",
	}, table.ModeUpdate)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"no_of_deaths":   int64(3),
		"cause_of_death": "injury",
		"mortality_date": "2024-05-01",
	}, doc)
}
