package main

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/config"
	"BreakoutSentinel/internal/logger"
	"BreakoutSentinel/internal/metrics"
	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/scanner"
	"BreakoutSentinel/internal/strategy"
)

type marketSource interface {
	collector.CandleSource
	collector.UniverseSource
}

// app bundles the components shared by run and scan.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	loc     *time.Location
	source  marketSource
	scanner *scanner.Scanner
	metrics *metrics.Recorder
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(cfg *config.Config, logOut io.Writer, reg prometheus.Registerer, demo bool) (*app, error) {
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, logOut)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var src marketSource
	if demo {
		src = collector.NewDemoSource(time.Now())
	} else {
		src = collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Exchange.QuoteAsset,
			cfg.Exchange.RequestsPerSecond, cfg.Exchange.Burst, cfg.Proxy)
	}
	log.Info().Str("source", src.Name()).Str("interval", cfg.Scan.Interval).Msg("data source ready")

	ev := strategy.NewEvaluator(strategy.Config{
		MinRows:        cfg.Strategy.MinRows,
		BreakoutReturn: cfg.Strategy.BreakoutReturn,
		Location:       loc,
	})
	col := collector.NewCollector(src, ev, cfg.Scan.Interval, cfg.Scan.Limit)

	rec := metrics.New(reg)
	sc := scanner.New(src, col.Detect,
		scanner.WithWorkers(cfg.Scan.Workers),
		scanner.WithObserver(rec),
		scanner.WithLogger(log),
	)

	return &app{cfg: cfg, log: log, loc: loc, source: src, scanner: sc, metrics: rec}, nil
}

func newTelegram(cfg *config.Config, log zerolog.Logger) *notifier.TelegramNotifier {
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
	tn.BaseURL = cfg.Telegram.BaseURL
	tn.Retries = cfg.Telegram.Retries
	return tn
}
