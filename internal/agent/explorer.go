// Package agent implements an explorer that only steps on cells an oracle
// has proven safe.
package agent

import (
	"context"
	"slices"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/planning"
	"github.com/Harshitk-cp/wumpus/internal/world"
	"go.uber.org/zap"
)

// Explorer walks to the nearest unvisited safe cell, grabs gold when it
// sees glitter, then returns to the start and climbs out. It is not safe for
// concurrent use.
type Explorer struct {
	size   int
	oracle SafetyOracle
	logger *zap.Logger

	position   domain.Coordinate
	facing     world.Direction
	visited    map[domain.Coordinate]world.Percept
	safe       map[domain.Coordinate]bool
	plan       []world.Action
	wumpusDead bool
	hasGold    bool
	lastAction world.Action

	oracleFailures int
}

func NewExplorer(size int, oracle SafetyOracle, logger *zap.Logger) *Explorer {
	e := &Explorer{size: size, oracle: oracle, logger: logger}
	e.Reset()
	return e
}

// Reset forgets everything learned in the previous episode.
func (e *Explorer) Reset() {
	e.position = domain.Start
	e.facing = world.East
	e.visited = make(map[domain.Coordinate]world.Percept)
	e.safe = map[domain.Coordinate]bool{domain.Start: true}
	e.plan = nil
	e.wumpusDead = false
	e.hasGold = false
	e.lastAction = ""
	e.oracleFailures = 0
}

func (e *Explorer) Position() domain.Coordinate { return e.position }

// OracleFailures counts the turns on which the oracle returned an error.
func (e *Explorer) OracleFailures() int { return e.oracleFailures }

// Evidence is the percept store implied by the cells visited so far.
func (e *Explorer) Evidence() domain.Evidence {
	facts := make([]domain.PerceptFact, 0, 2*len(e.visited))
	for cell, p := range e.visited {
		facts = append(facts, domain.Observation{Cell: cell, Breeze: p.Breeze, Stench: p.Stench}.Facts()...)
	}
	domain.SortFacts(facts)
	return domain.Evidence{GridSize: e.size, Facts: facts, WumpusDead: e.wumpusDead}
}

// Act chooses the next action given the percept produced by the previous one.
func (e *Explorer) Act(ctx context.Context, p world.Percept) world.Action {
	e.ingest(p)
	e.visited[e.position] = p

	if p.Glitter {
		e.plan = nil
		e.hasGold = true
		return e.do(world.Grab)
	}

	e.refreshSafe(ctx)

	if len(e.plan) == 0 {
		if e.hasGold {
			e.planTo(domain.Start)
		} else if target, ok := e.frontier(); ok {
			e.planTo(target)
		}
	}

	if len(e.plan) == 0 {
		if e.position == domain.Start {
			return e.do(world.Climb)
		}
		e.planTo(domain.Start)
		if len(e.plan) == 0 {
			return e.do(world.Climb)
		}
	}

	next := e.plan[0]
	e.plan = e.plan[1:]
	return e.do(next)
}

func (e *Explorer) do(a world.Action) world.Action {
	e.lastAction = a
	return a
}

// ingest applies the effect of the last action, as confirmed by p.
func (e *Explorer) ingest(p world.Percept) {
	switch e.lastAction {
	case world.TurnLeft:
		e.facing = e.facing.Left()
	case world.TurnRight:
		e.facing = e.facing.Right()
	case world.Forward:
		if !p.Bump {
			e.position = e.facing.Step(e.position)
		}
	}
	if p.Scream {
		e.wumpusDead = true
	}
}

// refreshSafe merges the oracle's answer into the known-safe set. When the
// oracle fails only visited cells are trusted.
func (e *Explorer) refreshSafe(ctx context.Context) {
	cells, err := e.oracle.SafeCells(ctx, e.Evidence())
	if err != nil {
		e.oracleFailures++
		e.logger.Warn("safety oracle failed, falling back to visited cells",
			zap.Int("visited", len(e.visited)),
			zap.Error(err))
		cells = nil
	}
	for _, cell := range cells {
		e.safe[cell] = true
	}
	for cell := range e.visited {
		e.safe[cell] = true
	}
}

// frontier picks the nearest safe unvisited cell, ties broken in board order.
func (e *Explorer) frontier() (domain.Coordinate, bool) {
	var candidates []domain.Coordinate
	for cell := range e.safe {
		if _, seen := e.visited[cell]; !seen {
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return domain.Coordinate{}, false
	}
	return slices.MinFunc(candidates, func(a, b domain.Coordinate) int {
		da, db := domain.ManhattanDistance(e.position, a), domain.ManhattanDistance(e.position, b)
		switch {
		case da != db:
			return da - db
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	}), true
}

func (e *Explorer) planTo(target domain.Coordinate) {
	if !e.safe[target] {
		return
	}
	path := planning.ShortestPath(e.position, target, func(c domain.Coordinate) bool { return e.safe[c] })
	if len(path) < 2 {
		return
	}
	e.plan, _ = planning.Actions(path, e.facing)
}
