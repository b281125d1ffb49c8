package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

type watchOptions struct {
	*rootOptions
	interval    time.Duration
	metricsAddr string
}

func newWatchCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &watchOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check the API and sync whenever it comes back",
		Long: `Check the API health endpoint every interval and report the result to the connectivity
monitor. Each transition to online replays the sync queue. Runs until interrupted.`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = opts.runWithAgent(func(ctx context.Context, a *agent, _ []string) error {
		if opts.interval <= 0 {
			return fmt.Errorf("interval must be positive (got %s)", opts.interval)
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if opts.metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", a.metrics.Handler())
			srv := &http.Server{Addr: opts.metricsAddr, Handler: mux}
			go func() {
				a.logger.Info("metrics listening", map[string]interface{}{"address": opts.metricsAddr})
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.logger.Error("metrics server", err)
				}
			}()
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(sctx)
			}()
		}

		check := func() {
			online := a.remote.Ping(ctx) == nil
			if ctx.Err() != nil {
				return
			}
			if online != a.monitor.Online() {
				a.logger.Info("connectivity changed", map[string]interface{}{"online": online})
			}
			a.metrics.SetOnline(online)
			a.monitor.SetOnline(online)
		}

		// a monitor that starts online emits no transition
		check()
		if a.monitor.Online() {
			a.coord.SyncPendingData(ctx)
		}

		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				check()
			}
		}
	})

	cmd.Flags().DurationVar(&opts.interval, "interval", rootOpts.conf.Offline.CheckInterval, "time between reachability checks")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", rootOpts.conf.Offline.MetricsAddress, "serve Prometheus metrics on this address")
	return cmd
}
