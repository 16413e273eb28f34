package world

import (
	"testing"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(x, y int) domain.Coordinate { return domain.Coordinate{X: x, Y: y} }

// fixed builds a board with a known layout.
func fixed(size int, wumpus, gold domain.Coordinate, pits ...domain.Coordinate) *World {
	w := &World{
		size:        size,
		pits:        make(map[domain.Coordinate]bool),
		wumpus:      wumpus,
		gold:        gold,
		agent:       domain.Start,
		facing:      East,
		wumpusAlive: true,
		arrow:       true,
	}
	for _, p := range pits {
		w.pits[p] = true
	}
	return w
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{Size: 0})
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(Config{Size: 4, PitProbability: 1.5})
	assert.ErrorIs(t, err, ErrInvalidPitProbability)
}

func TestGenerationDeterministic(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		a, err := New(Config{Size: 4, PitProbability: 0.2, Seed: seed})
		require.NoError(t, err)
		b, err := New(Config{Size: 4, PitProbability: 0.2, Seed: seed})
		require.NoError(t, err)
		assert.Equal(t, a.Render(), b.Render(), "seed %d", seed)
	}
}

func TestGenerationInvariants(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		w, err := New(Config{Size: 4, PitProbability: 0.3, Seed: seed})
		require.NoError(t, err)

		assert.NotContains(t, w.Pits(), domain.Start, "seed %d: pit on start", seed)
		if w.Wumpus() != domain.Start {
			assert.NotContains(t, w.Pits(), w.Wumpus(), "seed %d: wumpus on pit", seed)
		}
		if w.Gold() != domain.Start {
			assert.NotEqual(t, w.Wumpus(), w.Gold(), "seed %d", seed)
			assert.NotContains(t, w.Pits(), w.Gold(), "seed %d", seed)
		}
	}
}

func TestAllPitsPutsWumpusAndGoldOnStart(t *testing.T) {
	w, err := New(Config{Size: 3, PitProbability: 1, Seed: 1})
	require.NoError(t, err)
	assert.Len(t, w.Pits(), 8)
	assert.Equal(t, domain.Start, w.Wumpus())
	assert.Equal(t, domain.Start, w.Gold())
}

func TestPercepts(t *testing.T) {
	w := fixed(3, c(1, 3), c(2, 2), c(3, 1))

	p := w.InitialPercept()
	assert.False(t, p.Breeze)
	assert.False(t, p.Stench)

	res := w.Step(Forward) // (2,1): next to the pit at (3,1)
	assert.True(t, res.Percept.Breeze)
	assert.False(t, res.Percept.Stench)

	w.Step(TurnLeft)
	res = w.Step(Forward) // (2,2): gold, next to nothing
	assert.True(t, res.Percept.Glitter)
	assert.False(t, res.Percept.Breeze)

	w.Step(Grab)
	assert.True(t, w.HasGold())
	res = w.Step(Forward) // (2,3): next to the wumpus at (1,3)
	assert.True(t, res.Percept.Stench)
	assert.False(t, res.Percept.Glitter)
}

func TestBump(t *testing.T) {
	w := fixed(2, c(2, 2), c(2, 2))
	w.Step(TurnRight) // south
	res := w.Step(Forward)
	assert.True(t, res.Percept.Bump)
	pos, facing := w.Agent()
	assert.Equal(t, domain.Start, pos)
	assert.Equal(t, South, facing)
}

func TestDeathByPit(t *testing.T) {
	w := fixed(3, c(3, 3), c(1, 3), c(2, 1))
	res := w.Step(Forward)
	assert.True(t, res.Terminated)
	assert.Equal(t, OutcomeFellInPit, res.Outcome)
	assert.Equal(t, ActionCost+DeathCost, res.Score)
	assert.True(t, res.Outcome.Died())

	after := w.Step(Climb)
	assert.Equal(t, res.Score, after.Score, "terminated world must not change")
}

func TestShootKillsWumpus(t *testing.T) {
	w := fixed(4, c(4, 1), c(2, 2))
	res := w.Step(Shoot)
	assert.True(t, res.Percept.Scream)
	assert.False(t, w.WumpusAlive())
	assert.Equal(t, ActionCost+ArrowCost, res.Score)

	res = w.Step(Shoot)
	assert.False(t, res.Percept.Scream, "only one arrow")
	assert.Equal(t, 2*ActionCost+ArrowCost, res.Score)

	for range 3 {
		res = w.Step(Forward)
	}
	assert.False(t, res.Terminated, "a dead wumpus is harmless")
	assert.False(t, res.Percept.Stench)
}

func TestShootMisses(t *testing.T) {
	w := fixed(4, c(1, 4), c(2, 2))
	res := w.Step(Shoot)
	assert.False(t, res.Percept.Scream)
	assert.True(t, w.WumpusAlive())
}

func TestEatenByWumpus(t *testing.T) {
	w := fixed(3, c(2, 1), c(3, 3))
	res := w.Step(Forward)
	assert.Equal(t, OutcomeEatenByWumpus, res.Outcome)
}

func TestClimb(t *testing.T) {
	t.Run("away from start does nothing", func(t *testing.T) {
		w := fixed(3, c(3, 3), c(1, 3))
		w.Step(Forward)
		res := w.Step(Climb)
		assert.False(t, res.Terminated)
	})

	t.Run("without gold", func(t *testing.T) {
		w := fixed(3, c(3, 3), c(1, 3))
		res := w.Step(Climb)
		assert.Equal(t, OutcomeEscapedWithoutGold, res.Outcome)
		assert.Equal(t, ActionCost, res.Score)
	})

	t.Run("with gold", func(t *testing.T) {
		w := fixed(3, c(3, 3), c(2, 1))
		w.Step(Forward)
		w.Step(Grab)
		w.Step(TurnLeft)
		w.Step(TurnLeft)
		w.Step(Forward)
		res := w.Step(Climb)
		assert.Equal(t, OutcomeEscapedWithGold, res.Outcome)
		assert.Equal(t, 6*ActionCost+GoldReward, res.Score)
	})
}

func TestRender(t *testing.T) {
	w := fixed(3, c(1, 3), c(2, 2), c(3, 1))
	want := "W . .\n. G .\nA . P"
	assert.Equal(t, want, w.Render())
}

func TestDirection(t *testing.T) {
	assert.Equal(t, East, North.Right())
	assert.Equal(t, West, North.Left())
	assert.Equal(t, North, West.Right())
	assert.Equal(t, c(2, 1), East.Step(domain.Start))
	assert.Equal(t, North, Towards(c(2, 2), c(2, 3)))
	assert.Equal(t, West, Towards(c(2, 2), c(1, 2)))
	assert.Equal(t, "south", South.String())
}
