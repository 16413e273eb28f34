// Package inference certifies cells of a wumpus board as provably safe.
//
// A query enumerates every hazard placement (one wumpus, any set of pits, the
// start cell always clear) that agrees with the recorded percepts, then keeps
// only the cells that are hazard-free in all of them. There is no heuristic
// or probabilistic step: a cell is reported safe exactly when no consistent
// world puts a hazard on it.
//
// The enumeration is exponential in the number of cells and therefore limited
// to boards of at most MaxGridSize×MaxGridSize. Each query re-derives the model
// set from scratch; nothing is cached between queries.
//
// A pit and the wumpus may share a cell in a candidate world. Such worlds are
// counted as consistent like any other.
package inference
