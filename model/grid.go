package model

import "math/rand"

// cell is a grid coordinate.
type cell struct{ x, y int }

// grid is a toroidal multi-occupancy grid: every cell holds any number of
// agent ids, and neighborhoods wrap around the edges.
type grid struct {
	width, height int
	occupants     [][]int // indexed by y*width+x
}

func newGrid(width, height int) *grid {
	return &grid{
		width:     width,
		height:    height,
		occupants: make([][]int, width*height),
	}
}

func (g *grid) index(x, y int) int { return y*g.width + x }

// wrap folds a coordinate onto the torus.
func (g *grid) wrap(x, y int) (int, int) {
	x = ((x % g.width) + g.width) % g.width
	y = ((y % g.height) + g.height) % g.height
	return x, y
}

// place puts an agent id into a cell without removing it anywhere else.
func (g *grid) place(id, x, y int) {
	i := g.index(x, y)
	g.occupants[i] = append(g.occupants[i], id)
}

// move removes the id from its old cell and places it in the new one.
func (g *grid) move(id, fromX, fromY, toX, toY int) {
	if fromX == toX && fromY == toY {
		return
	}
	from := g.occupants[g.index(fromX, fromY)]
	for i, occ := range from {
		if occ == id {
			g.occupants[g.index(fromX, fromY)] = append(from[:i], from[i+1:]...)
			break
		}
	}
	g.place(id, toX, toY)
}

// cellmates returns the ids sharing the agent's cell, excluding itself.
func (g *grid) cellmates(id, x, y int) []int {
	occ := g.occupants[g.index(x, y)]
	out := make([]int, 0, len(occ))
	for _, other := range occ {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

// neighborhood returns the Moore neighborhood of a cell including the cell
// itself, wrapped on the torus. Cells that coincide after wrapping (grids
// narrower than three cells) appear once.
func (g *grid) neighborhood(x, y int) []cell {
	out := make([]cell, 0, 9)
	seen := make(map[cell]struct{}, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := g.wrap(x+dx, y+dy)
			c := cell{nx, ny}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// randomCell picks a uniformly random cell.
func (g *grid) randomCell(rng *rand.Rand) cell {
	return cell{rng.Intn(g.width), rng.Intn(g.height)}
}
