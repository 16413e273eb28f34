// Package planning turns known-safe cells into routes and action sequences.
package planning

import (
	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/world"
)

// ShortestPath finds a shortest route from start to goal that only steps on
// passable cells. The start cell itself need not be passable. It returns
// nil when goal is unreachable and [start] when start == goal.
func ShortestPath(start, goal domain.Coordinate, passable func(domain.Coordinate) bool) []domain.Coordinate {
	if start == goal {
		return []domain.Coordinate{start}
	}

	cameFrom := map[domain.Coordinate]domain.Coordinate{start: start}
	queue := []domain.Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range []domain.Coordinate{
			{X: cur.X + 1, Y: cur.Y}, {X: cur.X - 1, Y: cur.Y},
			{X: cur.X, Y: cur.Y + 1}, {X: cur.X, Y: cur.Y - 1},
		} {
			if _, seen := cameFrom[next]; seen || !passable(next) {
				continue
			}
			cameFrom[next] = cur
			if next == goal {
				return reconstruct(cameFrom, start, goal)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstruct(cameFrom map[domain.Coordinate]domain.Coordinate, start, goal domain.Coordinate) []domain.Coordinate {
	path := []domain.Coordinate{goal}
	for at := goal; at != start; {
		at = cameFrom[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Actions converts a path into turns and forward moves for an agent standing
// on path[0] with the given heading. It also returns the final heading.
func Actions(path []domain.Coordinate, facing world.Direction) ([]world.Action, world.Direction) {
	var out []world.Action
	for i := 1; i < len(path); i++ {
		want := world.Towards(path[i-1], path[i])
		out = append(out, turns(facing, want)...)
		out = append(out, world.Forward)
		facing = want
	}
	return out, facing
}

// turns is the shortest turn sequence from one heading to another.
func turns(from, to world.Direction) []world.Action {
	switch (to - from + 4) % 4 {
	case 1:
		return []world.Action{world.TurnRight}
	case 2:
		return []world.Action{world.TurnRight, world.TurnRight}
	case 3:
		return []world.Action{world.TurnLeft}
	}
	return nil
}
