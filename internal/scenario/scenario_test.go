package scenario

import (
	"testing"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/Harshitk-cp/wumpus/internal/satcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures(t *testing.T) {
	scenarios, err := LoadDir("testdata")
	require.NoError(t, err)
	require.Len(t, scenarios, 6)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			require.NotNil(t, s.ExpectSafe, "fixtures must state their expectation")
			ev, err := s.Evidence()
			require.NoError(t, err)

			kb, err := inference.FromEvidence(ev)
			require.NoError(t, err)
			safe, err := kb.ProvablySafe()
			require.NoError(t, err)
			assert.NoError(t, s.Check(safe))

			viaSAT, err := satcheck.SafeCells(ev)
			require.NoError(t, err)
			assert.NoError(t, s.Check(viaSAT))
		})
	}
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(`
name: mixed
grid_size: 2
facts:
  - {x: 2, y: 1, kind: stench_present}
observations:
  - {x: 1, y: 1, breeze: true}
`))
	require.NoError(t, err)
	assert.Nil(t, s.ExpectSafe)

	ev, err := s.Evidence()
	require.NoError(t, err)
	assert.Equal(t, domain.Evidence{
		GridSize: 2,
		Facts: []domain.PerceptFact{
			{Cell: domain.Start, Kind: domain.BreezePresent},
			{Cell: domain.Start, Kind: domain.StenchAbsent},
			{Cell: domain.Coordinate{X: 2, Y: 1}, Kind: domain.StenchPresent},
		},
	}, ev)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "grid_size: 3\npits: []\n"},
		{"unknown percept", "grid_size: 3\nfacts:\n  - {x: 1, y: 1, kind: glitter}\n"},
		{"not yaml", "grid_size: [3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEvidenceDeduplicates(t *testing.T) {
	s := &Scenario{
		GridSize:     2,
		Facts:        []Fact{{X: 1, Y: 1, Kind: "breeze_absent"}},
		Observations: []Observation{{X: 1, Y: 1}},
	}
	ev, err := s.Evidence()
	require.NoError(t, err)
	assert.Len(t, ev.Facts, 2)
}

func TestCheck(t *testing.T) {
	expect := []domain.Coordinate{{X: 1, Y: 1}, {X: 2, Y: 1}}
	s := &Scenario{ExpectSafe: &expect}

	assert.NoError(t, s.Check([]domain.Coordinate{{X: 2, Y: 1}, {X: 1, Y: 1}}))

	err := s.Check([]domain.Coordinate{{X: 1, Y: 1}, {X: 1, Y: 2}})
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "missing [(2,1)]")
	assert.Contains(t, err.Error(), "unexpected [(1,2)]")

	assert.NoError(t, (&Scenario{}).Check(nil), "no expectation accepts anything")
}

func TestLoadNamesFromFile(t *testing.T) {
	s, err := Load("testdata/03_lone_breeze.yaml")
	require.NoError(t, err)
	assert.Equal(t, "lone breeze certifies nothing new", s.Name)
	assert.Equal(t, "testdata/03_lone_breeze.yaml", s.Path)

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}
