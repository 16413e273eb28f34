package domain

import "fmt"

// Coordinate is a 1-indexed cell on an N×N board.
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Start is the fixed entry cell. It never holds a pit or the wumpus.
var Start = Coordinate{X: 1, Y: 1}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// InBounds reports whether c lies on an n×n board.
func (c Coordinate) InBounds(n int) bool {
	return c.X >= 1 && c.X <= n && c.Y >= 1 && c.Y <= n
}

// Less orders coordinates x-major, matching the enumeration order of the board.
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// ManhattanDistance returns |dx|+|dy| between two cells.
func ManhattanDistance(a, b Coordinate) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
