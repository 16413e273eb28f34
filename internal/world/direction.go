package world

import "github.com/Harshitk-cp/wumpus/internal/domain"

// Direction is a compass heading; turning right moves clockwise.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

func (d Direction) Right() Direction { return (d + 1) % 4 }

func (d Direction) Left() Direction { return (d + 3) % 4 }

// Step returns the cell one move from c along d. It may be off the board.
func (d Direction) Step(c domain.Coordinate) domain.Coordinate {
	switch d {
	case North:
		return domain.Coordinate{X: c.X, Y: c.Y + 1}
	case South:
		return domain.Coordinate{X: c.X, Y: c.Y - 1}
	case East:
		return domain.Coordinate{X: c.X + 1, Y: c.Y}
	default:
		return domain.Coordinate{X: c.X - 1, Y: c.Y}
	}
}

// Towards returns the heading that leads from a to the orthogonal
// neighbour b.
func Towards(a, b domain.Coordinate) Direction {
	switch {
	case b.X > a.X:
		return East
	case b.X < a.X:
		return West
	case b.Y > a.Y:
		return North
	default:
		return South
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}
