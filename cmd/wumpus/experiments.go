package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Harshitk-cp/wumpus/internal/agent"
	"github.com/Harshitk-cp/wumpus/internal/experiment"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExperimentsCmd(g *globals) *cobra.Command {
	var (
		cfg    experiment.Config
		asJSON bool
		remote remoteFlags
	)
	cmd := &cobra.Command{
		Use:   "experiments",
		Short: "Play a batch of episodes over seeds 0..episodes-1 and tabulate outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := remote.checkSize(cfg.Size); err != nil {
				return err
			}
			factory := experiment.EngineOracles
			if remote.enabled() {
				factory = func(ctx context.Context, seed uint64) (agent.SafetyOracle, func(), error) {
					return remote.oracle(ctx, cfg.Size, fmt.Sprintf("episode-%d", seed))
				}
			}

			g.logger.Info("starting experiments",
				zap.Int("episodes", cfg.Episodes),
				zap.Int("size", cfg.Size),
				zap.Float64("pit_probability", cfg.PitProbability),
				zap.Bool("remote", remote.enabled()))

			sum, err := experiment.Run(cmd.Context(), cfg, factory, g.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			st := newStyles(out)
			fmt.Fprintln(out, st.title.Render(fmt.Sprintf("%d episodes on %dx%d, pit probability %.2f",
				sum.Episodes, cfg.Size, cfg.Size, cfg.PitProbability)))
			fmt.Fprintln(out, outcomeTable(st, sum))
			fmt.Fprintf(out, "mean score %.1f\n", sum.MeanScore)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Episodes, "episodes", 50, "number of episodes")
	cmd.Flags().IntVar(&cfg.Size, "size", 4, "board size N (N×N)")
	cmd.Flags().Float64Var(&cfg.PitProbability, "pit-prob", 0.2, "probability of a pit in each non-start cell")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "concurrent episodes (0 means GOMAXPROCS)")
	cmd.Flags().IntVar(&cfg.MaxSteps, "max-steps", 0, "cut each episode off after this many actions (0 means 1000)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full summary, per-episode results included, as JSON")
	remote.register(cmd)
	return cmd
}

func outcomeTable(st styles, sum *experiment.Summary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.title.Padding(0, 1)
			}
			return st.cell
		}).
		Headers("outcome", "episodes", "share")
	for _, o := range sum.SortedOutcomes() {
		t.Row(string(o), strconv.Itoa(sum.Outcomes[o]), fmt.Sprintf("%.1f%%", 100*sum.Share(o)))
	}
	return t.String()
}
