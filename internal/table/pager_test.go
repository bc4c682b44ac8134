package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPager_TotalPages(t *testing.T) {
	p := NewPager(5)
	tests := []struct {
		count int
		want  int
	}{
		{0, 1},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.TotalPages(tt.count), "count=%d", tt.count)
	}
}

func TestPager_GoToClamps(t *testing.T) {
	p := NewPager(5)
	assert.Equal(t, 1, p.GoTo(0, 12))
	assert.Equal(t, 3, p.GoTo(9, 12))
	assert.Equal(t, 2, p.GoTo(2, 12))
	assert.Equal(t, 1, p.GoTo(2, 0))
}

func TestPager_NextPreviousStopAtBounds(t *testing.T) {
	p := NewPager(5)
	assert.Equal(t, 1, p.Previous(12))
	assert.Equal(t, 2, p.Next(12))
	assert.Equal(t, 3, p.Next(12))
	assert.Equal(t, 3, p.Next(12))
	assert.Equal(t, 2, p.Previous(12))
}

func TestPager_ClampAfterShrink(t *testing.T) {
	p := NewPager(5)
	p.GoTo(2, 6)
	assert.Equal(t, 1, p.Clamp(5))
}

func TestPager_Bounds(t *testing.T) {
	p := NewPager(5)
	from, to := p.Bounds(3)
	assert.Equal(t, 0, from)
	assert.Equal(t, 3, to)

	p.GoTo(2, 7)
	from, to = p.Bounds(7)
	assert.Equal(t, 5, from)
	assert.Equal(t, 7, to)

	from, to = p.Bounds(0)
	assert.Equal(t, 0, from)
	assert.Equal(t, 0, to)
}

func TestNewPager_RaisesNonPositiveSize(t *testing.T) {
	p := NewPager(0)
	assert.Equal(t, 1, p.PageSize())
	assert.Equal(t, 1, p.Current())
}
