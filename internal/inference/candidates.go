package inference

import "iter"

// world is one hazard placement: the wumpus cell index and the pit set.
type world struct {
	wumpus int
	pits   cellSet
}

// generateCandidates yields every structurally valid world of g: each
// non-start wumpus cell paired with each subset of the non-start cells as
// pits. Nothing is pruned here.
func generateCandidates(g *grid) iter.Seq[world] {
	return func(yield func(world) bool) {
		free := g.all() &^ (1 << uint(g.start))
		for w := range len(g.cells) {
			if w == g.start {
				continue
			}
			pits := free
			for {
				if !yield(world{wumpus: w, pits: pits}) {
					return
				}
				if pits == 0 {
					break
				}
				pits = (pits - 1) & free
			}
		}
	}
}

// candidateCount is the number of worlds generateCandidates yields.
func candidateCount(g *grid) int {
	cells := len(g.cells)
	return (cells - 1) * (1 << uint(cells-1))
}
