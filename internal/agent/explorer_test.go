package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func c(x, y int) domain.Coordinate { return domain.Coordinate{X: x, Y: y} }

func TestExplorerScriptedEpisode(t *testing.T) {
	ctx := context.Background()
	e := NewExplorer(2, EngineOracle{}, zap.NewNop())

	// Nothing sensed at the start: both neighbours become safe and the
	// tie goes to (1,2), which needs a left turn first.
	assert.Equal(t, world.TurnLeft, e.Act(ctx, world.Percept{}))
	assert.Equal(t, world.Forward, e.Act(ctx, world.Percept{}))
	assert.Equal(t, world.Grab, e.Act(ctx, world.Percept{Glitter: true}))
	assert.Equal(t, c(1, 2), e.Position())

	// Holding gold: turn around and head home.
	assert.Equal(t, world.TurnRight, e.Act(ctx, world.Percept{}))
	assert.Equal(t, world.TurnRight, e.Act(ctx, world.Percept{}))
	assert.Equal(t, world.Forward, e.Act(ctx, world.Percept{}))
	assert.Equal(t, world.Climb, e.Act(ctx, world.Percept{}))
	assert.Equal(t, domain.Start, e.Position())
	assert.Zero(t, e.OracleFailures())
}

func TestExplorerEvidence(t *testing.T) {
	e := NewExplorer(3, EngineOracle{}, zap.NewNop())
	e.Act(context.Background(), world.Percept{Breeze: true})

	ev := e.Evidence()
	assert.Equal(t, 3, ev.GridSize)
	assert.False(t, ev.WumpusDead)
	assert.Equal(t, []domain.PerceptFact{
		{Cell: domain.Start, Kind: domain.BreezePresent},
		{Cell: domain.Start, Kind: domain.StenchAbsent},
	}, ev.Facts)
}

func TestExplorerBreezeAtStartClimbs(t *testing.T) {
	e := NewExplorer(4, EngineOracle{}, zap.NewNop())
	assert.Equal(t, world.Climb, e.Act(context.Background(), world.Percept{Breeze: true}))
}

func TestExplorerScreamMarksWumpusDead(t *testing.T) {
	var seen domain.Evidence
	oracle := OracleFunc(func(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error) {
		seen = ev
		return nil, nil
	})
	e := NewExplorer(3, oracle, zap.NewNop())
	e.Act(context.Background(), world.Percept{Scream: true})
	assert.True(t, seen.WumpusDead)
}

func TestExplorerFallsBackToVisited(t *testing.T) {
	oracle := OracleFunc(func(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error) {
		return nil, errors.New("oracle offline")
	})
	e := NewExplorer(3, oracle, zap.NewNop())

	// Only the start cell is trusted, so there is nowhere to go.
	assert.Equal(t, world.Climb, e.Act(context.Background(), world.Percept{}))
	assert.Equal(t, 1, e.OracleFailures())
}

func TestExplorerOversizedBoardFallsBack(t *testing.T) {
	e := NewExplorer(6, EngineOracle{}, zap.NewNop())
	assert.Equal(t, world.Climb, e.Act(context.Background(), world.Percept{}))
	assert.Equal(t, 1, e.OracleFailures())
}

func TestExplorerReset(t *testing.T) {
	e := NewExplorer(2, EngineOracle{}, zap.NewNop())
	ctx := context.Background()
	e.Act(ctx, world.Percept{})
	e.Act(ctx, world.Percept{})
	e.Act(ctx, world.Percept{})

	e.Reset()
	assert.Equal(t, domain.Start, e.Position())
	assert.Empty(t, e.Evidence().Facts)
}

// The explorer only enters cells proven safe, so it can never die.
func TestExplorerNeverDies(t *testing.T) {
	tests := []struct {
		size  int
		seeds uint64
	}{
		{size: 3, seeds: 150},
		{size: 4, seeds: 10},
	}
	ctx := context.Background()
	for _, tt := range tests {
		for seed := uint64(0); seed < tt.seeds; seed++ {
			w, err := world.New(world.Config{Size: tt.size, PitProbability: 0.2, Seed: seed})
			require.NoError(t, err)
			e := NewExplorer(tt.size, EngineOracle{}, zap.NewNop())

			p := w.InitialPercept()
			var res world.StepResult
			for step := 0; step < 500 && !w.Terminated(); step++ {
				res = w.Step(e.Act(ctx, p))
				p = res.Percept
			}
			require.True(t, w.Terminated(), "size %d seed %d: episode did not finish", tt.size, seed)
			assert.False(t, res.Outcome.Died(), "size %d seed %d: %s\n%s", tt.size, seed, res.Outcome, w.Render())
		}
	}
}
