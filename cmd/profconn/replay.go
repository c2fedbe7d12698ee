package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chocoteam/cpp-integration/pkg/protocol"
	"github.com/chocoteam/cpp-integration/pkg/recorder"
)

func replayCmd(a *app) *cobra.Command {
	var (
		pace  bool
		speed float64
	)

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Resend a recorded search to the profiler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recorder.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			// never record a replay into the recording being read
			a.cfg.Record.Path = ""
			// count only frames that were written
			a.cfg.Profiler.Strict = true
			c, release, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			if !c.Connected() {
				return fmt.Errorf("replay: %w", protocol.ErrConnection)
			}

			n, err := recorder.Replay(cmd.Context(), r, c, recorder.ReplayOptions{Pace: pace, Speed: speed})
			a.log.Info("replay finished", zap.String("file", args[0]), zap.Int("frames", n), zap.Error(err))
			if err != nil {
				return err
			}
			fmt.Printf("replayed %d frames\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pace, "pace", false, "Reproduce the recorded timing between frames")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Timing multiplier used with --pace")

	return cmd
}
