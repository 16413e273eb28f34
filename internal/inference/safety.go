package inference

import (
	"context"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
)

// Result is the outcome of one safety query.
type Result struct {
	Safe       []domain.Coordinate
	Models     int
	Candidates int
	Elapsed    time.Duration
}

// safeCells returns the cells that are hazard-free in every model: never a
// pit, and never the wumpus unless the wumpus is dead. An empty model set
// carries no information and yields no safe cells.
func safeCells(g *grid, models []world, wumpusDead bool) []domain.Coordinate {
	if len(models) == 0 {
		return nil
	}
	var pits, wumpus cellSet
	for _, m := range models {
		pits |= m.pits
		wumpus |= 1 << uint(m.wumpus)
	}
	hazards := pits
	if !wumpusDead {
		hazards |= wumpus
	}
	out := make([]domain.Coordinate, 0, len(g.cells)-hazards.len())
	for i, c := range g.cells {
		if !hazards.has(i) {
			out = append(out, c)
		}
	}
	return out
}

// ProvablySafe returns the cells certified safe by the current evidence.
// Contradictory evidence yields an empty set.
func (kb *KnowledgeBase) ProvablySafe() ([]domain.Coordinate, error) {
	res, err := kb.Query(context.Background())
	if err != nil {
		return nil, err
	}
	return res.Safe, nil
}

// Query runs a full enumeration. Cancelling ctx abandons the enumeration and
// returns ctx.Err(); there is no partial answer.
func (kb *KnowledgeBase) Query(ctx context.Context) (*Result, error) {
	if kb.size == 0 {
		return nil, ErrGridSizeUnset
	}
	began := time.Now()

	g := newGrid(kb.size)
	models, examined, err := enumerateModels(ctx, g, kb.compile(g))
	if err != nil {
		return nil, err
	}

	res := &Result{Models: len(models), Candidates: examined, Safe: []domain.Coordinate{}}
	if len(models) > 0 {
		res.Safe = safeCells(g, models, kb.wumpusDead)
	}
	res.Elapsed = time.Since(began)
	return res, nil
}
