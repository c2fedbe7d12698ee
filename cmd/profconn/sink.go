package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chocoteam/cpp-integration/pkg/config"
	"github.com/chocoteam/cpp-integration/pkg/core/netstack"
	"github.com/chocoteam/cpp-integration/pkg/protocol"
	"github.com/chocoteam/cpp-integration/pkg/sink"
)

func sinkCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "sink",
		Short: "Accept profiler connections and log every message",
		Long: `Listen like a profiler would and log each decoded message. Useful
to check what a solver sends without running the profiler itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := netstack.NewByKind(a.cfg.Profiler.Transport)
			if err != nil {
				return err
			}
			if listen == "" {
				listen = fmt.Sprintf(":%d", config.DefaultPort)
			}
			l, err := tr.Listen(cmd.Context(), listen)
			if err != nil {
				return fmt.Errorf("listen %s: %w", listen, err)
			}
			defer l.Close()
			a.log.Info("sink listening", zap.Stringer("addr", l.Addr()), zap.Stringer("transport", tr.Kind()))

			return sink.Serve(cmd.Context(), l, func(remote net.Addr, m protocol.Message) {
				a.log.Info("message", zap.Stringer("remote", remote), zap.Stringer("msg", m))
			}, a.log)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default :6565)")

	return cmd
}
