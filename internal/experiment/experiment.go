// Package experiment plays batches of explorer episodes and tallies the
// outcomes.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/Harshitk-cp/wumpus/internal/agent"
	"github.com/Harshitk-cp/wumpus/internal/world"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OutcomeStepLimit marks an episode cut off before the world terminated.
const OutcomeStepLimit world.Outcome = "step_limit"

const defaultMaxSteps = 1000

var ErrInvalidConfig = errors.New("invalid experiment config")

type Config struct {
	Episodes       int
	Size           int
	PitProbability float64
	// Workers bounds concurrent episodes. Zero means GOMAXPROCS.
	Workers int
	// MaxSteps cuts off an episode. Zero means 1000.
	MaxSteps int
}

// OracleFactory builds the oracle for one episode. The returned release
// func, if non-nil, is called when the episode ends.
type OracleFactory func(ctx context.Context, seed uint64) (agent.SafetyOracle, func(), error)

// Step is one action and its effect.
type Step struct {
	N      int
	Action world.Action
	Result world.StepResult
}

type EpisodeResult struct {
	Seed           uint64        `json:"seed"`
	Outcome        world.Outcome `json:"outcome"`
	Score          int           `json:"score"`
	Steps          int           `json:"steps"`
	OracleFailures int           `json:"oracle_failures"`
}

type Summary struct {
	Episodes  int                   `json:"episodes"`
	Outcomes  map[world.Outcome]int `json:"outcomes"`
	MeanScore float64               `json:"mean_score"`
	Results   []EpisodeResult       `json:"results"`
}

// Share returns the fraction of episodes that ended with o.
func (s *Summary) Share(o world.Outcome) float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Outcomes[o]) / float64(s.Episodes)
}

// SortedOutcomes lists the outcomes seen, most frequent first.
func (s *Summary) SortedOutcomes() []world.Outcome {
	out := make([]world.Outcome, 0, len(s.Outcomes))
	for o := range s.Outcomes {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b world.Outcome) int {
		if d := s.Outcomes[b] - s.Outcomes[a]; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}

// Play runs one episode to termination or maxSteps. onStep, if set, sees
// every action.
func Play(ctx context.Context, w *world.World, e *agent.Explorer, maxSteps int, onStep func(Step)) (EpisodeResult, error) {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	p := w.InitialPercept()
	steps := 0
	for !w.Terminated() && steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return EpisodeResult{}, err
		}
		a := e.Act(ctx, p)
		res := w.Step(a)
		steps++
		if onStep != nil {
			onStep(Step{N: steps, Action: a, Result: res})
		}
		p = res.Percept
	}

	outcome := w.Outcome()
	if !w.Terminated() {
		outcome = OutcomeStepLimit
	}
	return EpisodeResult{
		Outcome:        outcome,
		Score:          w.Score(),
		Steps:          steps,
		OracleFailures: e.OracleFailures(),
	}, nil
}

// Run plays cfg.Episodes episodes over seeds 0..Episodes-1. Results are in
// seed order regardless of scheduling.
func Run(ctx context.Context, cfg Config, newOracle OracleFactory, logger *zap.Logger) (*Summary, error) {
	if cfg.Episodes < 1 || cfg.Size < 1 {
		return nil, fmt.Errorf("%w: episodes and size must be positive", ErrInvalidConfig)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]EpisodeResult, cfg.Episodes)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range cfg.Episodes {
		seed := uint64(i)
		g.Go(func() error {
			w, err := world.New(world.Config{Size: cfg.Size, PitProbability: cfg.PitProbability, Seed: seed})
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			oracle, release, err := newOracle(gctx, seed)
			if err != nil {
				return fmt.Errorf("episode %d: %w", seed, err)
			}
			if release != nil {
				defer release()
			}

			res, err := Play(gctx, w, agent.NewExplorer(cfg.Size, oracle, logger), cfg.MaxSteps, nil)
			if err != nil {
				return fmt.Errorf("episode %d: %w", seed, err)
			}
			res.Seed = seed
			results[i] = res

			logger.Debug("episode finished",
				zap.Uint64("seed", seed),
				zap.String("outcome", string(res.Outcome)),
				zap.Int("score", res.Score),
				zap.Int("steps", res.Steps))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{
		Episodes: cfg.Episodes,
		Outcomes: make(map[world.Outcome]int),
		Results:  results,
	}
	total := 0
	for _, r := range results {
		sum.Outcomes[r.Outcome]++
		total += r.Score
	}
	sum.MeanScore = float64(total) / float64(cfg.Episodes)
	return sum, nil
}

// EngineOracles gives every episode the in-process engine.
func EngineOracles(context.Context, uint64) (agent.SafetyOracle, func(), error) {
	return agent.EngineOracle{}, nil, nil
}
