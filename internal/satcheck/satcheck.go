// Package satcheck re-derives provably safe cells with a SAT solver.
//
// The board is encoded as one propositional variable per (cell, pit) and per
// (cell, wumpus), with an exactly-one constraint over wumpus variables. A cell
// is safe when the theory is satisfiable and asserting a hazard on the cell
// makes it unsatisfiable. The encoding admits the same worlds as the
// enumerator in package inference, including a pit sharing the wumpus cell,
// so both must agree on every input.
package satcheck

import (
	"fmt"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

const (
	sat   = 1
	unsat = -1
)

type encoding struct {
	n     int
	cells []domain.Coordinate
	g     *gini.Gini
}

func (e *encoding) index(c domain.Coordinate) int {
	return (c.X-1)*e.n + (c.Y - 1)
}

// pit and wumpus map cells to solver literals; variable 0 is reserved.
func (e *encoding) pit(c domain.Coordinate) z.Lit {
	return z.Var(1 + e.index(c)).Pos()
}

func (e *encoding) wumpus(c domain.Coordinate) z.Lit {
	return z.Var(1 + len(e.cells) + e.index(c)).Pos()
}

func (e *encoding) clause(lits ...z.Lit) {
	for _, m := range lits {
		e.g.Add(m)
	}
	e.g.Add(z.LitNull)
}

// SafeCells returns the cells proven hazard-free under ev, in board order.
// Contradictory evidence yields an empty set.
func SafeCells(ev domain.Evidence) ([]domain.Coordinate, error) {
	// Validation is shared with the enumerator so both reject the same inputs.
	if _, err := inference.FromEvidence(ev); err != nil {
		return nil, fmt.Errorf("satcheck: %w", err)
	}

	e := encode(ev)
	safe := []domain.Coordinate{}
	if e.g.Solve() != sat {
		return safe, nil
	}

	for _, cell := range e.cells {
		e.g.Assume(e.pit(cell))
		if e.g.Solve() != unsat {
			continue
		}
		if !ev.WumpusDead {
			e.g.Assume(e.wumpus(cell))
			if e.g.Solve() != unsat {
				continue
			}
		}
		safe = append(safe, cell)
	}
	return safe, nil
}

func encode(ev domain.Evidence) *encoding {
	n := ev.GridSize
	e := &encoding{n: n, cells: inference.Coordinates(n), g: gini.New()}

	// Start axiom.
	e.clause(e.pit(domain.Start).Not())
	e.clause(e.wumpus(domain.Start).Not())

	// Exactly one wumpus cell.
	all := make([]z.Lit, 0, len(e.cells))
	for _, cell := range e.cells {
		all = append(all, e.wumpus(cell))
	}
	e.clause(all...)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			e.clause(all[i].Not(), all[j].Not())
		}
	}

	for _, f := range ev.Facts {
		adj := inference.Adjacent(f.Cell, n)
		switch f.Kind {
		case domain.BreezePresent:
			lits := make([]z.Lit, 0, len(adj))
			for _, nb := range adj {
				lits = append(lits, e.pit(nb))
			}
			e.clause(lits...)
		case domain.BreezeAbsent:
			for _, nb := range adj {
				e.clause(e.pit(nb).Not())
			}
		case domain.StenchPresent:
			if ev.WumpusDead {
				continue
			}
			lits := make([]z.Lit, 0, len(adj))
			for _, nb := range adj {
				lits = append(lits, e.wumpus(nb))
			}
			e.clause(lits...)
		case domain.StenchAbsent:
			if ev.WumpusDead {
				continue
			}
			for _, nb := range adj {
				e.clause(e.wumpus(nb).Not())
			}
		}
	}
	return e
}
