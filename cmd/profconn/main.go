package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "profconn",
		Short: "Report search trees to a profiler",
		Long: `profconn talks the profiler's framed binary protocol.

It can run a sample search that reports its tree, replay a recorded
search, generate sample frames and act as a stand-in profiler that
logs every message it receives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.shutdown()
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	f.String("host", "", "Profiler host (overrides profiler.host)")
	f.Int("port", 0, "Profiler port (overrides profiler.port)")
	f.String("transport", "", "Transport kind: tcp, quic, winpipe (overrides profiler.transport)")
	f.Bool("strict", false, "Fail on send errors instead of dropping frames")
	f.String("record", "", "Record sent frames to this file")

	rootCmd.AddCommand(
		demoCmd(a),
		replayCmd(a),
		sinkCmd(a),
		framesCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "profconn: %s\n", err)
		os.Exit(1)
	}
}
