// Package world simulates the grid world the explorer plays in: pits, a
// wumpus, gold, one arrow and an exit at the start cell.
package world

import (
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/Harshitk-cp/wumpus/internal/domain"
)

// Score changes.
const (
	ActionCost = -1
	ArrowCost  = -10
	GoldReward = 1000
	DeathCost  = -1000
)

var (
	ErrInvalidSize           = errors.New("world size must be positive")
	ErrInvalidPitProbability = errors.New("pit probability must be within [0, 1]")
)

type Action string

const (
	Forward   Action = "forward"
	TurnLeft  Action = "turn_left"
	TurnRight Action = "turn_right"
	Grab      Action = "grab"
	Shoot     Action = "shoot"
	Climb     Action = "climb"
)

type Outcome string

const (
	OutcomeEscapedWithGold    Outcome = "escaped_with_gold"
	OutcomeEscapedWithoutGold Outcome = "escaped_without_gold"
	OutcomeFellInPit          Outcome = "fell_in_pit"
	OutcomeEatenByWumpus      Outcome = "eaten_by_wumpus"
)

// Died reports whether the outcome ends the agent's life.
func (o Outcome) Died() bool {
	return o == OutcomeFellInPit || o == OutcomeEatenByWumpus
}

type Percept struct {
	Breeze  bool `json:"breeze"`
	Stench  bool `json:"stench"`
	Glitter bool `json:"glitter"`
	Bump    bool `json:"bump"`
	Scream  bool `json:"scream"`
}

type StepResult struct {
	Percept    Percept `json:"percept"`
	Terminated bool    `json:"terminated"`
	Outcome    Outcome `json:"outcome,omitempty"`
	HasGold    bool    `json:"has_gold"`
	Score      int     `json:"score"`
}

type Config struct {
	Size           int
	PitProbability float64
	Seed           uint64
}

// World is one episode's board. It is not safe for concurrent use.
type World struct {
	size int

	pits   map[domain.Coordinate]bool
	wumpus domain.Coordinate
	gold   domain.Coordinate

	agent  domain.Coordinate
	facing Direction

	wumpusAlive bool
	hasGold     bool
	arrow       bool
	terminated  bool
	outcome     Outcome
	score       int
}

// New generates a board. The same config always yields the same board.
func New(cfg Config) (*World, error) {
	if cfg.Size < 1 {
		return nil, ErrInvalidSize
	}
	if cfg.PitProbability < 0 || cfg.PitProbability > 1 {
		return nil, ErrInvalidPitProbability
	}

	w := &World{
		size:        cfg.Size,
		pits:        make(map[domain.Coordinate]bool),
		wumpus:      domain.Start,
		gold:        domain.Start,
		agent:       domain.Start,
		facing:      East,
		wumpusAlive: true,
		arrow:       true,
	}
	w.generate(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)), cfg.PitProbability)
	return w, nil
}

func (w *World) generate(rng *rand.Rand, pitProbability float64) {
	var cells []domain.Coordinate
	for x := 1; x <= w.size; x++ {
		for y := 1; y <= w.size; y++ {
			if c := (domain.Coordinate{X: x, Y: y}); c != domain.Start {
				cells = append(cells, c)
			}
		}
	}

	for _, c := range cells {
		if rng.Float64() < pitProbability {
			w.pits[c] = true
		}
	}

	var free []domain.Coordinate
	for _, c := range cells {
		if !w.pits[c] {
			free = append(free, c)
		}
	}
	if len(free) > 0 {
		w.wumpus = free[rng.IntN(len(free))]
	}

	var goldCells []domain.Coordinate
	for _, c := range free {
		if c != w.wumpus {
			goldCells = append(goldCells, c)
		}
	}
	if len(goldCells) > 0 {
		w.gold = goldCells[rng.IntN(len(goldCells))]
	}
}

func (w *World) Size() int { return w.size }

func (w *World) Score() int { return w.score }

func (w *World) Outcome() Outcome { return w.outcome }

func (w *World) Terminated() bool { return w.terminated }

func (w *World) HasGold() bool { return w.hasGold }

func (w *World) WumpusAlive() bool { return w.wumpusAlive }

func (w *World) Wumpus() domain.Coordinate { return w.wumpus }

func (w *World) Gold() domain.Coordinate { return w.gold }

// Agent returns the agent's cell and heading.
func (w *World) Agent() (domain.Coordinate, Direction) { return w.agent, w.facing }

// Pits returns the pit cells in board order.
func (w *World) Pits() []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(w.pits))
	for x := 1; x <= w.size; x++ {
		for y := 1; y <= w.size; y++ {
			if c := (domain.Coordinate{X: x, Y: y}); w.pits[c] {
				out = append(out, c)
			}
		}
	}
	return out
}

// Hazardous reports whether entering c now would kill the agent.
func (w *World) Hazardous(c domain.Coordinate) bool {
	return w.pits[c] || (w.wumpusAlive && c == w.wumpus)
}

func (w *World) neighbors(c domain.Coordinate) []domain.Coordinate {
	out := make([]domain.Coordinate, 0, 4)
	for _, n := range []domain.Coordinate{
		{X: c.X + 1, Y: c.Y}, {X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1}, {X: c.X, Y: c.Y - 1},
	} {
		if n.InBounds(w.size) {
			out = append(out, n)
		}
	}
	return out
}

func (w *World) percept(bump, scream bool) Percept {
	p := Percept{Bump: bump, Scream: scream}
	for _, n := range w.neighbors(w.agent) {
		if w.pits[n] {
			p.Breeze = true
		}
		if w.wumpusAlive && n == w.wumpus {
			p.Stench = true
		}
	}
	p.Glitter = w.agent == w.gold && !w.hasGold
	return p
}

// InitialPercept is what the agent senses at the start cell before acting.
func (w *World) InitialPercept() Percept {
	return w.percept(false, false)
}

func (w *World) result(p Percept) StepResult {
	return StepResult{
		Percept:    p,
		Terminated: w.terminated,
		Outcome:    w.outcome,
		HasGold:    w.hasGold,
		Score:      w.score,
	}
}

// Step applies one action. Once the episode has terminated further actions
// change nothing.
func (w *World) Step(a Action) StepResult {
	if w.terminated {
		return w.result(w.percept(false, false))
	}

	w.score += ActionCost
	var bump, scream bool

	switch a {
	case TurnLeft:
		w.facing = w.facing.Left()
	case TurnRight:
		w.facing = w.facing.Right()
	case Forward:
		next := w.facing.Step(w.agent)
		if next.InBounds(w.size) {
			w.agent = next
		} else {
			bump = true
		}
	case Grab:
		if w.agent == w.gold && !w.hasGold {
			w.hasGold = true
		}
	case Shoot:
		if w.arrow {
			w.arrow = false
			w.score += ArrowCost
			scream = w.shoot()
		}
	case Climb:
		if w.agent == domain.Start {
			w.terminated = true
			w.outcome = OutcomeEscapedWithoutGold
			if w.hasGold {
				w.outcome = OutcomeEscapedWithGold
				w.score += GoldReward
			}
		}
	}

	if !w.terminated && w.pits[w.agent] {
		w.die(OutcomeFellInPit)
	}
	if !w.terminated && w.wumpusAlive && w.agent == w.wumpus {
		w.die(OutcomeEatenByWumpus)
	}

	return w.result(w.percept(bump, scream))
}

func (w *World) die(o Outcome) {
	w.terminated = true
	w.outcome = o
	w.score += DeathCost
}

// shoot flies the arrow from the agent along its heading until it leaves
// the board or hits the live wumpus.
func (w *World) shoot() bool {
	for c := w.facing.Step(w.agent); c.InBounds(w.size); c = w.facing.Step(c) {
		if w.wumpusAlive && c == w.wumpus {
			w.wumpusAlive = false
			return true
		}
	}
	return false
}

// Render draws the board with y growing upwards. Pits are drawn over the
// wumpus, the wumpus over gold, and gold over the agent.
func (w *World) Render() string {
	var sb strings.Builder
	for y := w.size; y >= 1; y-- {
		for x := 1; x <= w.size; x++ {
			c := domain.Coordinate{X: x, Y: y}
			cell := "."
			switch {
			case w.pits[c]:
				cell = "P"
			case w.wumpusAlive && c == w.wumpus:
				cell = "W"
			case !w.hasGold && c == w.gold:
				cell = "G"
			case c == w.agent:
				cell = "A"
			case c == domain.Start:
				cell = "S"
			}
			if x > 1 {
				sb.WriteByte(' ')
			}
			sb.WriteString(cell)
		}
		if y > 1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
