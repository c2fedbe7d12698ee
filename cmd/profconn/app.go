package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chocoteam/cpp-integration/pkg/config"
	"github.com/chocoteam/cpp-integration/pkg/connector"
	"github.com/chocoteam/cpp-integration/pkg/core/netstack"
	"github.com/chocoteam/cpp-integration/pkg/observability"
	"github.com/chocoteam/cpp-integration/pkg/recorder"
)

// app carries what every subcommand shares after flag parsing.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Profiler.Host, _ = f.GetString("host")
	}
	if f.Changed("port") {
		cfg.Profiler.Port, _ = f.GetInt("port")
	}
	if f.Changed("transport") {
		cfg.Profiler.Transport, _ = f.GetString("transport")
	}
	if f.Changed("strict") {
		cfg.Profiler.Strict, _ = f.GetBool("strict")
	}
	if f.Changed("record") {
		cfg.Record.Path, _ = f.GetString("record")
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	a.cfg, a.log = cfg, logger
	logger.Debug("effective configuration", zap.Any("config", cfg))
	return nil
}

func (a *app) shutdown() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// connect builds a Connector from the loaded configuration and tries to
// reach the profiler. An unreachable profiler is logged, not returned: the
// caller still gets a usable Connector whose sends are skipped. The returned
// func disconnects and releases the recording and metrics endpoint.
func (a *app) connect(ctx context.Context) (*connector.Connector, func(), error) {
	p := a.cfg.Profiler
	tr, err := netstack.NewByKind(p.Transport)
	if err != nil {
		return nil, nil, err
	}
	opts := connector.Options{
		Transport:    tr,
		Strict:       p.Strict,
		WriteTimeout: time.Duration(p.WriteTimeoutMS) * time.Millisecond,
		Logger:       a.log,
	}

	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if path := a.cfg.Record.Path; path != "" {
		rec, err := recorder.Create(path)
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = rec
		closers = append(closers, func() {
			if err := rec.Close(); err != nil {
				a.log.Warn("closing recording", zap.String("path", path), zap.Error(err))
			}
		})
		a.log.Info("recording frames", zap.String("path", path))
	}

	if addr := a.cfg.Metrics.Listen; addr != "" {
		reg := prometheus.NewRegistry()
		opts.Metrics = observability.NewMetrics(a.cfg.Metrics.Namespace, reg)
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Warn("metrics endpoint failed", zap.String("addr", addr), zap.Error(err))
			}
		}()
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	}

	c := connector.New(opts)
	closers = append(closers, c.Disconnect)
	if err := c.Connect(ctx, p.Host, p.Port); err != nil {
		a.log.Warn("profiler not connected; search events will be skipped", zap.Error(err))
	}
	return c, release, nil
}
