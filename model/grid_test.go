package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridWrap(t *testing.T) {
	g := newGrid(10, 8)

	tests := []struct {
		x, y         int
		wantX, wantY int
	}{
		{0, 0, 0, 0},
		{9, 7, 9, 7},
		{10, 8, 0, 0},
		{-1, -1, 9, 7},
		{25, -9, 5, 7},
	}
	for _, tt := range tests {
		x, y := g.wrap(tt.x, tt.y)
		assert.Equal(t, tt.wantX, x)
		assert.Equal(t, tt.wantY, y)
	}
}

func TestGridMoveAndCellmates(t *testing.T) {
	g := newGrid(5, 5)
	g.place(1, 2, 2)
	g.place(2, 2, 2)
	g.place(3, 0, 0)

	assert.ElementsMatch(t, []int{2}, g.cellmates(1, 2, 2))
	assert.Empty(t, g.cellmates(3, 0, 0))

	g.move(1, 2, 2, 0, 0)
	assert.ElementsMatch(t, []int{3}, g.cellmates(1, 0, 0))
	assert.Empty(t, g.cellmates(2, 2, 2))

	// Moving onto the same cell is a no-op.
	g.move(1, 0, 0, 0, 0)
	assert.ElementsMatch(t, []int{3}, g.cellmates(1, 0, 0))
}

func TestGridNeighborhood(t *testing.T) {
	g := newGrid(10, 10)

	cells := g.neighborhood(5, 5)
	require.Len(t, cells, 9)
	assert.Contains(t, cells, cell{5, 5}, "neighborhood includes the center")
	assert.Contains(t, cells, cell{4, 4})
	assert.Contains(t, cells, cell{6, 6})

	// Wraps at the edge.
	cells = g.neighborhood(0, 0)
	require.Len(t, cells, 9)
	assert.Contains(t, cells, cell{9, 9})

	// Degenerate grids dedupe wrapped cells.
	small := newGrid(2, 2)
	assert.Len(t, small.neighborhood(0, 0), 4)

	tiny := newGrid(1, 1)
	assert.Len(t, tiny.neighborhood(0, 0), 1)
}

func TestGridRandomCellInBounds(t *testing.T) {
	g := newGrid(7, 3)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		c := g.randomCell(rng)
		assert.GreaterOrEqual(t, c.x, 0)
		assert.Less(t, c.x, 7)
		assert.GreaterOrEqual(t, c.y, 0)
		assert.Less(t, c.y, 3)
	}
}
