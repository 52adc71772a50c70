package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"BreakoutSentinel/internal/scheduler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}

	root := &cobra.Command{
		Use:   "breakout-sentinel",
		Short: "Bollinger breakout scanner for Binance USDT-M futures",
		Long: `BreakoutSentinel scans every tradable USDT-M perpetual after each bar closes
and reports long and short Bollinger breakouts to Telegram.

Examples:
  breakout-sentinel run
  breakout-sentinel scan --symbols BTCUSDT,ETHUSDT
  breakout-sentinel scan --demo`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", defaultCfg, "config file path")

	root.AddCommand(newRunCmd(), newScanCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled scanner and Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateTelegram(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			a, err := newApp(cfg, os.Stdout, reg, false)
			if err != nil {
				return err
			}
			log := a.log

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tn := newTelegram(cfg, log)

			sched := scheduler.NewScheduler(ctx, a.scanner, tn, scheduler.Options{
				Interval: cfg.Scan.Interval,
				Location: a.loc,
				Timeout:  cfg.Scan.Timeout,
				Metrics:  a.metrics,
			}, log)
			if err := sched.Register(cfg.Scan.Cron); err != nil {
				return fmt.Errorf("register scan task: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info().Msg("telegram polling started")

			var srv *http.Server
			if cfg.Metrics.Addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
				srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
			}

			if cfg.Scan.RunOnStart {
				log.Info().Msg("run_on_start enabled, scanning now")
				go sched.RunNow()
			}

			log.Info().Time("next_run", sched.NextRun()).Msg("BreakoutSentinel is running, press Ctrl+C to stop")
			<-ctx.Done()

			log.Info().Msg("shutdown signal received, stopping")
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			return nil
		},
	}
}
