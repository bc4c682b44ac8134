package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_ConfirmYieldsOnce(t *testing.T) {
	var g Gate
	assert.True(t, g.Open("7"))

	id, ok := g.Confirm()
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	_, ok = g.Confirm()
	assert.False(t, ok)
	assert.False(t, g.Open("8"), "open refused while the delete is in flight")

	g.Close()
	assert.Equal(t, GateClosed, g.State())
	assert.Equal(t, "", g.RowID())
}

func TestGate_CancelNeverConfirms(t *testing.T) {
	var g Gate
	g.Open("7")
	assert.True(t, g.Cancel())
	assert.False(t, g.Cancel())

	_, ok := g.Confirm()
	assert.False(t, ok)
}

func TestGate_OpenRebinds(t *testing.T) {
	var g Gate
	g.Open("1")
	g.Open("2")
	id, ok := g.Confirm()
	assert.True(t, ok)
	assert.Equal(t, "2", id)
}
