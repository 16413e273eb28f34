package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Harshitk-cp/wumpus/internal/agent"
	"github.com/Harshitk-cp/wumpus/internal/client"
	"github.com/Harshitk-cp/wumpus/internal/experiment"
	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/Harshitk-cp/wumpus/internal/world"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// remoteFlags select a server-backed oracle instead of the in-process engine.
type remoteFlags struct {
	url    string
	apiKey string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "remote", "", "answer safety queries through the server at this base URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", os.Getenv("WUMPUS_API_KEY"), "tenant API key for --remote (default $WUMPUS_API_KEY)")
}

func (f *remoteFlags) enabled() bool { return f.url != "" }

// checkSize rejects boards the in-process engine cannot enumerate. A remote
// server applies its own limit.
func (f *remoteFlags) checkSize(size int) error {
	if !f.enabled() && size > inference.MaxGridSize {
		return fmt.Errorf("--size %d exceeds %d, the largest board the local engine handles (use --remote)", size, inference.MaxGridSize)
	}
	return nil
}

// oracle opens a remote session sized for one episode. The returned func
// deletes it.
func (f *remoteFlags) oracle(ctx context.Context, size int, label string) (agent.SafetyOracle, func(), error) {
	if f.apiKey == "" {
		return nil, nil, fmt.Errorf("--api-key is required with --remote")
	}
	c := client.New(f.url, f.apiKey)
	o, err := client.NewOracle(ctx, c, size, label+"-"+uuid.NewString())
	if err != nil {
		return nil, nil, err
	}
	return o, func() { _ = o.Close(context.Background()) }, nil
}

func newRunCmd(g *globals) *cobra.Command {
	var (
		cfg      world.Config
		maxSteps int
		quiet    bool
		remote   remoteFlags
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play one episode and print every step",
		Example: `  wumpus run --size 4 --seed 7
  wumpus run --remote http://localhost:8080 --api-key wk_...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := remote.checkSize(cfg.Size); err != nil {
				return err
			}
			ctx := cmd.Context()
			w, err := world.New(cfg)
			if err != nil {
				return err
			}

			var oracle agent.SafetyOracle = agent.EngineOracle{}
			if remote.enabled() {
				o, release, err := remote.oracle(ctx, cfg.Size, fmt.Sprintf("run-%d", cfg.Seed))
				if err != nil {
					return err
				}
				defer release()
				oracle = o
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			var onStep func(experiment.Step)
			if !quiet {
				onStep = func(s experiment.Step) { printStep(out, st, s) }
			}

			e := agent.NewExplorer(cfg.Size, oracle, g.logger)
			res, err := experiment.Play(ctx, w, e, maxSteps, onStep)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, st.board.Render(w.Render()))
			fmt.Fprintf(out, "%s  score %d  steps %d\n",
				outcomeStyle(st, res.Outcome).Render(string(res.Outcome)), res.Score, res.Steps)
			if res.OracleFailures > 0 {
				fmt.Fprintln(out, st.warn.Render(fmt.Sprintf("oracle failed %d times; explorer fell back to visited cells", res.OracleFailures)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Size, "size", 4, "board size N (N×N)")
	cmd.Flags().Float64Var(&cfg.PitProbability, "pit-prob", 0.2, "probability of a pit in each non-start cell")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 0, "world generator seed")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "cut the episode off after this many actions (0 means 1000)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "omit the step log")
	remote.register(cmd)
	return cmd
}

func printStep(out io.Writer, st styles, s experiment.Step) {
	var sensed []string
	p := s.Result.Percept
	for _, f := range []struct {
		on   bool
		name string
	}{
		{p.Breeze, "breeze"},
		{p.Stench, "stench"},
		{p.Glitter, "glitter"},
		{p.Bump, "bump"},
		{p.Scream, "scream"},
	} {
		if f.on {
			sensed = append(sensed, f.name)
		}
	}
	line := fmt.Sprintf("%4d  %-10s  %-28s  score %d", s.N, s.Action, strings.Join(sensed, " "), s.Result.Score)
	if s.Result.Terminated {
		line += "  " + outcomeStyle(st, s.Result.Outcome).Render(string(s.Result.Outcome))
	}
	fmt.Fprintln(out, line)
}

func outcomeStyle(st styles, o world.Outcome) lipgloss.Style {
	switch {
	case o == world.OutcomeEscapedWithGold:
		return st.ok
	case o.Died():
		return st.fail
	default:
		return st.warn
	}
}
