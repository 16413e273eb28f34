package inference

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/wumpus/internal/domain"
)

var (
	ErrInvalidGridSize  = errors.New("grid size must be positive")
	ErrGridTooLarge     = fmt.Errorf("grid size exceeds %d", MaxGridSize)
	ErrGridSizeUnset    = errors.New("grid size not set")
	ErrOutOfBounds      = errors.New("coordinate outside grid")
	ErrGridSizeConflict = errors.New("asserted facts fall outside the new grid size")
)

type factMask uint8

const (
	breezePresentBit factMask = 1 << iota
	breezeAbsentBit
	stenchPresentBit
	stenchAbsentBit
)

var kindBits = map[domain.PerceptKind]factMask{
	domain.BreezePresent: breezePresentBit,
	domain.BreezeAbsent:  breezeAbsentBit,
	domain.StenchPresent: stenchPresentBit,
	domain.StenchAbsent:  stenchAbsentBit,
}

// KnowledgeBase is a caller-owned percept store. It is not safe for
// concurrent use; hosts that share one must serialize mutation and queries.
type KnowledgeBase struct {
	size       int
	facts      map[domain.Coordinate]factMask
	wumpusDead bool
}

func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{facts: make(map[domain.Coordinate]factMask)}
}

// FromEvidence rebuilds a knowledge base from a snapshot.
func FromEvidence(ev domain.Evidence) (*KnowledgeBase, error) {
	kb := NewKnowledgeBase()
	if err := kb.SetGridSize(ev.GridSize); err != nil {
		return nil, err
	}
	for _, f := range ev.Facts {
		if err := kb.Assert(f); err != nil {
			return nil, fmt.Errorf("fact %s %s: %w", f.Kind, f.Cell, err)
		}
	}
	if ev.WumpusDead {
		kb.MarkWumpusDead()
	}
	return kb, nil
}

// SetGridSize fixes the board edge length. Shrinking the board below a cell
// that already carries evidence is rejected.
func (kb *KnowledgeBase) SetGridSize(n int) error {
	if n < 1 {
		return ErrInvalidGridSize
	}
	if n > MaxGridSize {
		return ErrGridTooLarge
	}
	for c := range kb.facts {
		if !c.InBounds(n) {
			return ErrGridSizeConflict
		}
	}
	kb.size = n
	return nil
}

func (kb *KnowledgeBase) GridSize() int { return kb.size }

func (kb *KnowledgeBase) AssertBreeze(c domain.Coordinate, present bool) error {
	return kb.Assert(domain.PerceptFact{Cell: c, Kind: domain.BreezeKind(present)})
}

func (kb *KnowledgeBase) AssertStench(c domain.Coordinate, present bool) error {
	return kb.Assert(domain.PerceptFact{Cell: c, Kind: domain.StenchKind(present)})
}

// Observe records both percepts sensed on a visited cell.
func (kb *KnowledgeBase) Observe(o domain.Observation) error {
	for _, f := range o.Facts() {
		if err := kb.Assert(f); err != nil {
			return err
		}
	}
	return nil
}

// Assert records one fact. Present and absent evidence for the same cell are
// both kept; such a store admits no world and every query answers empty.
func (kb *KnowledgeBase) Assert(f domain.PerceptFact) error {
	bit, ok := kindBits[f.Kind]
	if !ok {
		return domain.ErrUnknownPercept
	}
	if kb.size == 0 {
		return ErrGridSizeUnset
	}
	if !f.Cell.InBounds(kb.size) {
		return ErrOutOfBounds
	}
	kb.facts[f.Cell] |= bit
	return nil
}

// MarkWumpusDead is irreversible until Reset.
func (kb *KnowledgeBase) MarkWumpusDead() { kb.wumpusDead = true }

func (kb *KnowledgeBase) WumpusDead() bool { return kb.wumpusDead }

// Reset clears all percepts and the dead flag. The grid size is kept.
func (kb *KnowledgeBase) Reset() {
	kb.facts = make(map[domain.Coordinate]factMask)
	kb.wumpusDead = false
}

// Facts returns the asserted facts in a stable order.
func (kb *KnowledgeBase) Facts() []domain.PerceptFact {
	out := make([]domain.PerceptFact, 0, len(kb.facts)*2)
	for c, m := range kb.facts {
		for kind, bit := range kindBits {
			if m&bit != 0 {
				out = append(out, domain.PerceptFact{Cell: c, Kind: kind})
			}
		}
	}
	domain.SortFacts(out)
	return out
}

func (kb *KnowledgeBase) Evidence() domain.Evidence {
	return domain.Evidence{GridSize: kb.size, Facts: kb.Facts(), WumpusDead: kb.wumpusDead}
}
