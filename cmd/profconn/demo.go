package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func demoCmd(a *app) *cobra.Command {
	var (
		n      int
		name   string
		execID int32
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Solve n-queens and report the search tree",
		Long: `Run a backtracking n-queens search and send every node it visits
to the configured profiler. The search runs even when no profiler is
reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = fmt.Sprintf("queens_%d", n)
			}
			c, release, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			started := time.Now()
			if err := c.Start(name, execID, false); err != nil {
				return err
			}
			sols, err := solveQueens(c, n)
			if err != nil {
				return err
			}
			if err := c.Done(); err != nil {
				return err
			}
			a.log.Info("search finished",
				zap.Int("queens", n),
				zap.Int("solutions", sols),
				zap.Bool("reported", c.Connected()),
				zap.Duration("took", time.Since(started)))
			fmt.Printf("%d-queens: %d solutions\n", n, sols)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "queens", "n", 6, "Board size")
	cmd.Flags().StringVar(&name, "name", "", "Model name sent with START (default queens_<n>)")
	cmd.Flags().Int32Var(&execID, "execution-id", 0, "Execution id sent with START")

	return cmd
}
