package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id, qty string) Record {
	return Record{ID: id, Values: map[string]string{"Quantity (kg)": qty}}
}

func TestStore_ReplaceAllKeepsOrderAndDropsDuplicates(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Record{rec("2", "1"), rec("1", "2"), rec("2", "3")})

	got := s.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "1", got[0].Values["Quantity (kg)"])
	assert.Equal(t, "1", got[1].ID)
}

func TestStore_AppendReplaceRemove(t *testing.T) {
	s := NewStore(rec("1", "10"))
	s.Append(rec("2", "20"))
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.ReplaceByID("1", rec("1", "15")))
	r, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "15", r.Values["Quantity (kg)"])

	assert.False(t, s.ReplaceByID("missing", rec("missing", "1")))
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.RemoveByID("1"))
	assert.False(t, s.RemoveByID("1"))
	assert.Equal(t, []string{"2"}, ids(s.Records()))
}

func TestStore_AppendExistingIDReplacesInPlace(t *testing.T) {
	s := NewStore(rec("1", "10"), rec("2", "20"))
	s.Append(rec("1", "11"))

	assert.Equal(t, []string{"1", "2"}, ids(s.Records()))
	r, _ := s.Get("1")
	assert.Equal(t, "11", r.Values["Quantity (kg)"])
}

func TestStore_RecordsAreCopies(t *testing.T) {
	s := NewStore(rec("1", "10"))
	before := s.Records()

	got := s.Records()
	got[0].Values["Quantity (kg)"] = "999"

	if diff := cmp.Diff(before, s.Records()); diff != "" {
		t.Fatalf("store mutated through a returned copy (-want +got):\n%s", diff)
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
