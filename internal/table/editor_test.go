package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedRow() Record {
	return Record{ID: "1", Values: map[string]string{
		"Feed Type":       "Starter",
		"Quantity (kg)":   "10",
		"Time of Feeding": "08:00",
		"Date":            "2024-01-01",
		"Notes":           "-",
	}}
}

func TestEditor_SetWhileIdleIsNoop(t *testing.T) {
	e := NewEditor(feedSchema())
	require.NoError(t, e.Set("Quantity (kg)", "15"))
	assert.Equal(t, Idle, e.State())
	assert.Empty(t, e.Buffer())
}

func TestEditor_BeginSwitchDiscardsPreviousBuffer(t *testing.T) {
	e := NewEditor(feedSchema())
	e.Begin(feedRow())
	require.NoError(t, e.Set("Quantity (kg)", "15"))

	other := feedRow()
	other.ID = "2"
	e.Begin(other)

	assert.Equal(t, "2", e.RowID())
	assert.Equal(t, "10", e.Value("Quantity (kg)"))
}

func TestEditor_DropdownRejectsUnknownValue(t *testing.T) {
	e := NewEditor(feedSchema())
	e.Begin(feedRow())

	err := e.Set("Feed Type", "Pellets")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Starter", e.Value("Feed Type"))

	require.NoError(t, e.Set("Feed Type", "Layer"))
	assert.Equal(t, "Layer", e.Value("Feed Type"))
}

func TestEditor_CommitMergesAndGoesIdle(t *testing.T) {
	e := NewEditor(feedSchema())
	e.Begin(feedRow())
	require.NoError(t, e.Set("Quantity (kg)", "15"))

	merged, ok := e.Commit()
	require.True(t, ok)
	assert.Equal(t, "15", merged.Values["Quantity (kg)"])
	assert.Equal(t, "Starter", merged.Values["Feed Type"])
	assert.Equal(t, Idle, e.State())

	_, ok = e.Commit()
	assert.False(t, ok)
}

func TestEditor_ReadOnlyColumnsIgnored(t *testing.T) {
	s := feedSchema()
	s.Columns[3].Editable = false
	e := NewEditor(s)
	e.Begin(feedRow())
	require.NoError(t, e.Set("Date", "2030-01-01"))

	merged, _ := e.Commit()
	assert.Equal(t, "2024-01-01", merged.Values["Date"])
}

func TestEditor_RetryRestoresRejectedValues(t *testing.T) {
	e := NewEditor(feedSchema())
	row := feedRow()
	rejected := row.Clone()
	rejected.Values["Quantity (kg)"] = "abc"
	e.MarkFailed(row.ID, rejected.Values)

	assert.True(t, e.Failed(row.ID))
	assert.True(t, e.Retry(row))
	assert.Equal(t, Editing, e.State())
	assert.Equal(t, "abc", e.Value("Quantity (kg)"))

	e.ClearFailed(row.ID)
	assert.False(t, e.Retry(row))
}
