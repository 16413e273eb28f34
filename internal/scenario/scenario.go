// Package scenario reads evidence fixtures written in YAML.
//
//	name: breeze-east-of-start
//	grid_size: 3
//	facts:
//	  - {x: 2, y: 1, kind: breeze_present}
//	observations:
//	  - {x: 1, y: 1, breeze: false, stench: false}
//	expect_safe: [{x: 1, y: 1}]
//
// Observations are visited cells and contribute a breeze and a stench fact
// each. expect_safe is optional.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"gopkg.in/yaml.v3"
)

var ErrMismatch = errors.New("safe cells differ from expectation")

type Fact struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Kind string `yaml:"kind"`
}

type Observation struct {
	X      int  `yaml:"x"`
	Y      int  `yaml:"y"`
	Breeze bool `yaml:"breeze"`
	Stench bool `yaml:"stench"`
}

type Scenario struct {
	Name         string               `yaml:"name"`
	GridSize     int                  `yaml:"grid_size"`
	WumpusDead   bool                 `yaml:"wumpus_dead"`
	Facts        []Fact               `yaml:"facts"`
	Observations []Observation        `yaml:"observations"`
	ExpectSafe   *[]domain.Coordinate `yaml:"expect_safe"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Parse decodes one scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if _, err := s.Evidence(); err != nil {
		return nil, err
	}
	return &s, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// LoadDir loads every *.yaml file in dir, in name order.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Evidence converts the scenario to an evidence snapshot with facts in
// board order. Bounds are not checked here; the engine does that.
func (s *Scenario) Evidence() (domain.Evidence, error) {
	facts := make([]domain.PerceptFact, 0, len(s.Facts)+2*len(s.Observations))
	for _, f := range s.Facts {
		kind, err := domain.ParsePerceptKind(f.Kind)
		if err != nil {
			return domain.Evidence{}, fmt.Errorf("fact at (%d,%d): %w", f.X, f.Y, err)
		}
		facts = append(facts, domain.PerceptFact{Cell: domain.Coordinate{X: f.X, Y: f.Y}, Kind: kind})
	}
	for _, o := range s.Observations {
		obs := domain.Observation{Cell: domain.Coordinate{X: o.X, Y: o.Y}, Breeze: o.Breeze, Stench: o.Stench}
		facts = append(facts, obs.Facts()...)
	}
	domain.SortFacts(facts)
	facts = slices.Compact(facts)

	return domain.Evidence{GridSize: s.GridSize, Facts: facts, WumpusDead: s.WumpusDead}, nil
}

// Check compares safe against expect_safe, ignoring order. A scenario
// without expect_safe accepts anything.
func (s *Scenario) Check(safe []domain.Coordinate) error {
	if s.ExpectSafe == nil {
		return nil
	}
	want := sortedCells(*s.ExpectSafe)
	got := sortedCells(safe)
	if slices.Equal(want, got) {
		return nil
	}

	var missing, unexpected []string
	for _, c := range want {
		if !slices.Contains(got, c) {
			missing = append(missing, c.String())
		}
	}
	for _, c := range got {
		if !slices.Contains(want, c) {
			unexpected = append(unexpected, c.String())
		}
	}
	return fmt.Errorf("%w: missing [%s], unexpected [%s]",
		ErrMismatch, strings.Join(missing, " "), strings.Join(unexpected, " "))
}

func sortedCells(cells []domain.Coordinate) []domain.Coordinate {
	out := slices.Clone(cells)
	slices.SortFunc(out, func(a, b domain.Coordinate) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return slices.Compact(out)
}
