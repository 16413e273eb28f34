package domain

import (
	"errors"
	"slices"
)

// PerceptKind tags a single piece of evidence recorded at a visited cell.
type PerceptKind string

const (
	BreezePresent PerceptKind = "breeze_present"
	BreezeAbsent  PerceptKind = "breeze_absent"
	StenchPresent PerceptKind = "stench_present"
	StenchAbsent  PerceptKind = "stench_absent"
)

var ErrUnknownPercept = errors.New("unknown percept kind")

func ValidPerceptKind(k PerceptKind) bool {
	switch k {
	case BreezePresent, BreezeAbsent, StenchPresent, StenchAbsent:
		return true
	}
	return false
}

// ParsePerceptKind validates a wire/string form of a percept kind.
func ParsePerceptKind(s string) (PerceptKind, error) {
	k := PerceptKind(s)
	if !ValidPerceptKind(k) {
		return "", ErrUnknownPercept
	}
	return k, nil
}

// BreezeKind maps a breeze observation to its fact kind.
func BreezeKind(present bool) PerceptKind {
	if present {
		return BreezePresent
	}
	return BreezeAbsent
}

// StenchKind maps a stench observation to its fact kind.
func StenchKind(present bool) PerceptKind {
	if present {
		return StenchPresent
	}
	return StenchAbsent
}

// PerceptFact is one asserted percept at one cell.
type PerceptFact struct {
	Cell Coordinate  `json:"cell"`
	Kind PerceptKind `json:"kind"`
}

// Observation is everything an agent senses about hazards on entering a cell.
// It expands to one breeze fact and one stench fact.
type Observation struct {
	Cell   Coordinate `json:"cell"`
	Breeze bool       `json:"breeze"`
	Stench bool       `json:"stench"`
}

func (o Observation) Facts() []PerceptFact {
	return []PerceptFact{
		{Cell: o.Cell, Kind: BreezeKind(o.Breeze)},
		{Cell: o.Cell, Kind: StenchKind(o.Stench)},
	}
}

// Evidence is a snapshot of a percept store: board size, every asserted fact
// and the wumpus-dead flag.
type Evidence struct {
	GridSize   int           `json:"grid_size" yaml:"grid_size"`
	Facts      []PerceptFact `json:"facts" yaml:"facts"`
	WumpusDead bool          `json:"wumpus_dead" yaml:"wumpus_dead"`
}

// SortFacts orders facts by cell, then kind, so snapshots compare stably.
func SortFacts(facts []PerceptFact) {
	slices.SortFunc(facts, func(a, b PerceptFact) int {
		switch {
		case a.Cell.Less(b.Cell):
			return -1
		case b.Cell.Less(a.Cell):
			return 1
		case a.Kind < b.Kind:
			return -1
		case a.Kind > b.Kind:
			return 1
		}
		return 0
	})
}
