package main

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/scanner"
)

func newScanCmd() *cobra.Command {
	var (
		symbolList string
		notify     bool
		demo       bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if notify {
				if err := cfg.ValidateTelegram(); err != nil {
					return err
				}
			}

			a, err := newApp(cfg, cmd.ErrOrStderr(), prometheus.NewRegistry(), demo)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if cfg.Scan.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Scan.Timeout)
				defer cancel()
			}

			var res *scanner.Result
			if symbols := parseSymbols(symbolList); len(symbols) > 0 {
				res = a.scanner.Scan(ctx, symbols)
			} else if res, err = a.scanner.RunScan(ctx); err != nil {
				return err
			}

			report := notifier.FormatReport(res, cfg.Scan.Interval, a.loc)
			if err := notifier.NewWriterNotifier(cmd.OutOrStdout()).Notify(ctx, report); err != nil {
				return err
			}
			if notify {
				if err := newTelegram(cfg, a.log).Notify(ctx, report); err != nil {
					a.log.Error().Err(err).Msg("telegram delivery failed")
					a.metrics.NotifyFailed()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated symbols to scan (default: all tradable)")
	cmd.Flags().BoolVar(&notify, "notify", false, "also send the report to Telegram")
	cmd.Flags().BoolVar(&demo, "demo", false, "scan a built-in synthetic universe instead of the exchange")
	return cmd
}

func parseSymbols(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
