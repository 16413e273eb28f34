package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/Harshitk-cp/wumpus/internal/satcheck"
	"github.com/Harshitk-cp/wumpus/internal/scenario"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errSolverDisagrees = errors.New("sat cross-check disagrees with enumeration")

func newQueryCmd(g *globals) *cobra.Command {
	var (
		paths   []string
		withSAT bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "query -f SCENARIO",
		Short: "Print the provably safe cells for YAML evidence scenarios",
		Long: `Print the provably safe cells for one or more YAML evidence scenarios.
-f accepts a file or a directory of *.yaml files. The command exits non-zero
if any scenario carries expect_safe and the engine disagrees with it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var all []*scenario.Scenario
			for _, p := range paths {
				ss, err := loadScenarios(p)
				if err != nil {
					return err
				}
				all = append(all, ss...)
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			var failed []error
			for _, s := range all {
				if err := queryScenario(cmd, out, st, s, withSAT, timeout); err != nil {
					g.logger.Debug("scenario failed", zap.String("path", s.Path), zap.Error(err))
					fmt.Fprintln(out, st.fail.Render("  "+err.Error()))
					failed = append(failed, fmt.Errorf("%s: %w", s.Path, err))
				}
			}
			return errors.Join(failed...)
		},
	}
	cmd.Flags().StringSliceVarP(&paths, "file", "f", nil, "scenario file or directory (repeatable)")
	cmd.Flags().BoolVar(&withSAT, "sat", false, "also derive the safe set with the SAT solver and compare")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "abandon a single query after this long")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadScenarios(path string) ([]*scenario.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scenario.LoadDir(path)
	}
	s, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	return []*scenario.Scenario{s}, nil
}

func queryScenario(cmd *cobra.Command, out io.Writer, st styles, s *scenario.Scenario, withSAT bool, timeout time.Duration) error {
	name := s.Name
	if name == "" {
		name = s.Path
	}
	fmt.Fprintln(out, st.title.Render(name))

	ev, err := s.Evidence()
	if err != nil {
		return err
	}
	kb, err := inference.FromEvidence(ev)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := kb.Query(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  safe   %s\n", formatCells(res.Safe))
	fmt.Fprintln(out, st.muted.Render(fmt.Sprintf("  %d of %d candidate worlds consistent, %s",
		res.Models, res.Candidates, res.Elapsed.Round(time.Microsecond))))
	if res.Models == 0 {
		fmt.Fprintln(out, st.warn.Render("  evidence is contradictory"))
	}

	if withSAT {
		satSafe, err := satcheck.SafeCells(ev)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  sat    %s\n", formatCells(satSafe))
		if !slices.Equal(satSafe, res.Safe) {
			return errSolverDisagrees
		}
	}

	if err := s.Check(res.Safe); err != nil {
		return err
	}
	if s.ExpectSafe != nil {
		fmt.Fprintln(out, st.ok.Render("  matches expect_safe"))
	}
	return nil
}

func formatCells(cells []domain.Coordinate) string {
	if len(cells) == 0 {
		return "none"
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
