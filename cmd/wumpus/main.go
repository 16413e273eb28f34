// Command wumpus plays and inspects wumpus-world episodes driven by the
// provably-safe-cells engine, either in-process or through a running server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globals struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "wumpus",
		Short: "Wumpus world episodes and safety queries",
		Long: `wumpus drives a cautious explorer through generated wumpus worlds. The
explorer only steps onto cells that are provably safe given what it has
sensed so far.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !g.verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			g.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = g.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log engine and explorer activity to stderr")

	root.AddCommand(
		newRunCmd(g),
		newExperimentsCmd(g),
		newQueryCmd(g),
		newVersionCmd(),
	)
	return root
}
