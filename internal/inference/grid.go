package inference

import (
	"fmt"
	"math/bits"

	"github.com/Harshitk-cp/wumpus/internal/domain"
)

// MaxGridSize bounds the board edge. A 4×4 board already yields
// 15·2^15 candidate worlds per query.
const MaxGridSize = 4

// cellSet is a bitmask over cell indices of one board.
type cellSet uint32

func (s cellSet) has(i int) bool { return s&(1<<uint(i)) != 0 }

func (s cellSet) len() int { return bits.OnesCount32(uint32(s)) }

// Coordinates returns every cell of an n×n board, x-major.
func Coordinates(n int) []domain.Coordinate {
	if n < 1 {
		panic(fmt.Sprintf("inference: grid size %d must be positive", n))
	}
	out := make([]domain.Coordinate, 0, n*n)
	for x := 1; x <= n; x++ {
		for y := 1; y <= n; y++ {
			out = append(out, domain.Coordinate{X: x, Y: y})
		}
	}
	return out
}

// Adjacent returns the orthogonal neighbours of c clipped to the board.
// It panics when c itself is off the board.
func Adjacent(c domain.Coordinate, n int) []domain.Coordinate {
	if !c.InBounds(n) {
		panic(fmt.Sprintf("inference: %s outside %dx%d grid", c, n, n))
	}
	candidates := [4]domain.Coordinate{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
	out := make([]domain.Coordinate, 0, 4)
	for _, nb := range candidates {
		if nb.InBounds(n) {
			out = append(out, nb)
		}
	}
	return out
}

// grid is a board compiled for bitmask evaluation.
type grid struct {
	n     int
	cells []domain.Coordinate
	adj   []cellSet
	start int
}

func newGrid(n int) *grid {
	g := &grid{n: n, cells: Coordinates(n)}
	g.adj = make([]cellSet, len(g.cells))
	for i, c := range g.cells {
		for _, nb := range Adjacent(c, n) {
			g.adj[i] |= g.bit(nb)
		}
	}
	g.start = g.index(domain.Start)
	return g
}

func (g *grid) index(c domain.Coordinate) int {
	return (c.X-1)*g.n + (c.Y - 1)
}

func (g *grid) bit(c domain.Coordinate) cellSet {
	return 1 << uint(g.index(c))
}

func (g *grid) all() cellSet {
	return cellSet(1)<<uint(len(g.cells)) - 1
}
