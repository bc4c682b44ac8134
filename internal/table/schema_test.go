package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_ToDocumentCreate(t *testing.T) {
	s := feedSchema()
	doc, err := s.ToDocument(map[string]string{
		"Feed Type":       "Grower",
		"Quantity (kg)":   "12.5",
		"Time of Feeding": "07:30",
		"Date":            "2024-02-01",
		"Notes":           "-",
	}, ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"feed_type":       "Grower",
		"qty":             12.5,
		"time_of_feeding": "07:30",
		"feed_date":       "2024-02-01",
	}, doc)
}

func TestSchema_ToDocumentMissingRequired(t *testing.T) {
	_, err := feedSchema().ToDocument(map[string]string{"Feed Type": "Grower"}, ModeCreate)
	require.Error(t, err)
	assert.Equal(t, "All fields are required.", err.Error())
}

func TestSchema_ToDocumentRejectsNonNumbers(t *testing.T) {
	for _, raw := range []string{"abc", "NaN", "Inf", "1e400"} {
		_, err := feedSchema().ToDocument(map[string]string{"Quantity (kg)": raw}, ModeUpdate)
		require.Error(t, err, raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestSchema_ToDocumentUpdateOnlyPresentLabels(t *testing.T) {
	doc, err := feedSchema().ToDocument(map[string]string{"Quantity (kg)": "15"}, ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"qty": 15.0}, doc)
}

func TestSchema_ToDocumentUpdateRequiredCleared(t *testing.T) {
	_, err := feedSchema().ToDocument(map[string]string{"Date": ""}, ModeUpdate)
	require.Error(t, err)
	assert.Equal(t, "Date is required.", err.Error())
}

func TestSchema_ToDocumentIntegerColumn(t *testing.T) {
	s := &Schema{Columns: []Column{{Label: "Total Eggs", Field: "total_eggs", Kind: KindNumber, Integer: true, Required: true}}}

	doc, err := s.ToDocument(map[string]string{"Total Eggs": "120"}, ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, int64(120), doc["total_eggs"])

	_, err = s.ToDocument(map[string]string{"Total Eggs": "12.5"}, ModeCreate)
	assert.EqualError(t, err, "Total Eggs must be a whole number.")
}

func TestSchema_ToDocumentRejectsBadDateTimeAndDropdown(t *testing.T) {
	s := feedSchema()
	_, err := s.ToDocument(map[string]string{"Date": "01/02/2024"}, ModeUpdate)
	assert.True(t, IsValidation(err))

	_, err = s.ToDocument(map[string]string{"Time of Feeding": "8 am"}, ModeUpdate)
	assert.True(t, IsValidation(err))

	_, err = s.ToDocument(map[string]string{"Feed Type": "Pellets"}, ModeUpdate)
	assert.EqualError(t, err, "Feed Type must be one of Starter, Grower, Finisher, Layer.")
}

func TestSchema_FromDocument(t *testing.T) {
	r, err := feedSchema().FromDocument(map[string]any{
		"id":              json.Number("1"),
		"feed_type":       "Starter",
		"qty":             json.Number("10"),
		"feed_date":       "2024-01-01",
		"time_of_feeding": "08:00",
		"notes":           nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "1", r.ID)
	assert.Equal(t, "10", r.Values["Quantity (kg)"])
	assert.Equal(t, Placeholder, r.Values["Notes"])
}

func TestSchema_FromDocumentRequiresID(t *testing.T) {
	_, err := feedSchema().FromDocument(map[string]any{"qty": 1.0})
	assert.Error(t, err)
}

func TestSchema_NormalizeDropsUnknownFields(t *testing.T) {
	doc, err := feedSchema().Normalize(map[string]any{
		"feed_type":       "Layer",
		"qty":             "7",
		"feed_date":       "2024-03-03",
		"time_of_feeding": "18:00",
		"owner":           "someone",
	}, ModeCreate)
	require.NoError(t, err)
	assert.Equal(t, 7.0, doc["qty"])
	assert.NotContains(t, doc, "owner")
}

func TestSchema_Editable(t *testing.T) {
	s := feedSchema()
	s.Columns[4].Editable = false

	assert.True(t, s.Editable("Quantity (kg)"))
	assert.False(t, s.Editable("Notes"))
	assert.False(t, s.Editable("Unknown"))
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "12", FormatID(12.0))
	assert.Equal(t, "12", FormatID(int64(12)))
	assert.Equal(t, "abc", FormatID("abc"))
	assert.Equal(t, "", FormatID(nil))
}
