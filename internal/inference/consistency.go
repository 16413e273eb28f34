package inference

// theory is the percept store compiled against one grid.
type theory struct {
	start int

	// breezy holds, per breeze-present cell, its neighbourhood; each must
	// contain a pit.
	breezy []cellSet
	// pitFree is the union of neighbourhoods of breeze-absent cells.
	pitFree cellSet

	// smelly holds, per stench-present cell, its neighbourhood; each must
	// contain the wumpus.
	smelly []cellSet
	// wumpusFree is the union of neighbourhoods of stench-absent cells.
	wumpusFree cellSet

	wumpusDead bool
}

func (kb *KnowledgeBase) compile(g *grid) *theory {
	th := &theory{start: g.start, wumpusDead: kb.wumpusDead}
	for _, c := range g.cells {
		m := kb.facts[c]
		if m == 0 {
			continue
		}
		nb := g.adj[g.index(c)]
		if m&breezePresentBit != 0 {
			th.breezy = append(th.breezy, nb)
		}
		if m&breezeAbsentBit != 0 {
			th.pitFree |= nb
		}
		if m&stenchPresentBit != 0 {
			th.smelly = append(th.smelly, nb)
		}
		if m&stenchAbsentBit != 0 {
			th.wumpusFree |= nb
		}
	}
	return th
}

// isConsistent reports whether w explains every recorded percept. Stench
// evidence is ignored once the wumpus is dead. A pit on the wumpus cell is
// not a contradiction.
func isConsistent(w world, th *theory) bool {
	if w.wumpus == th.start || w.pits.has(th.start) {
		return false
	}
	for _, nb := range th.breezy {
		if w.pits&nb == 0 {
			return false
		}
	}
	if w.pits&th.pitFree != 0 {
		return false
	}
	if th.wumpusDead {
		return true
	}
	for _, nb := range th.smelly {
		if !nb.has(w.wumpus) {
			return false
		}
	}
	return !th.wumpusFree.has(w.wumpus)
}
