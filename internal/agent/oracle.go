package agent

import (
	"context"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/inference"
)

// SafetyOracle answers which cells are provably hazard-free given a
// snapshot of evidence.
type SafetyOracle interface {
	SafeCells(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error)
}

// OracleFunc adapts a function to SafetyOracle.
type OracleFunc func(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error)

func (f OracleFunc) SafeCells(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error) {
	return f(ctx, ev)
}

// EngineOracle runs the inference engine in process.
type EngineOracle struct{}

func (EngineOracle) SafeCells(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error) {
	kb, err := inference.FromEvidence(ev)
	if err != nil {
		return nil, err
	}
	res, err := kb.Query(ctx)
	if err != nil {
		return nil, err
	}
	return res.Safe, nil
}
