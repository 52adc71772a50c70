package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/collector"
	"BreakoutSentinel/internal/model"

	"github.com/rs/zerolog"
)

// DefaultWorkers is the number of symbols evaluated concurrently.
const DefaultWorkers = 10

// ErrEmptyUniverse is returned when the universe source lists no symbols.
var ErrEmptyUniverse = errors.New("universe contains no symbols")

// Outcome kinds reported for each symbol.
const (
	OutcomeOK         = "ok"
	OutcomeFetch      = "fetch"
	OutcomeConversion = "conversion"
	OutcomePanic      = "panic"
	OutcomeOther      = "other"
)

// DetectFunc fetches and evaluates one symbol.
type DetectFunc func(ctx context.Context, symbol string) (long, short *model.Signal, err error)

// Observer receives scan measurements. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveSymbol(outcome string)
	ObserveSignal(side model.Side)
	ObserveScan(universe int, d time.Duration)
}

// Result is the outcome of one scan cycle.
type Result struct {
	Long     []model.Signal
	Short    []model.Signal
	Scanned  int
	Failed   int
	Started  time.Time
	Duration time.Duration
}

// Scanner runs a DetectFunc over a symbol universe with bounded concurrency.
type Scanner struct {
	universe collector.UniverseSource
	detect   DetectFunc
	workers  int
	observer Observer
	log      zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the pool width. Values below 1 keep the default.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithObserver attaches a measurement sink.
func WithObserver(o Observer) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithLogger sets the logger used for per-symbol failures and scan summaries.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.log = l.With().Str("component", "scanner").Logger() }
}

// New creates a Scanner.
func New(universe collector.UniverseSource, detect DetectFunc, opts ...Option) *Scanner {
	s := &Scanner{
		universe: universe,
		detect:   detect,
		workers:  DefaultWorkers,
		observer: nopObserver{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScan lists the universe and scans every symbol in it. Only a universe
// failure is returned as an error.
func (s *Scanner) RunScan(ctx context.Context) (*Result, error) {
	symbols, err := s.universe.ListTradableSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyUniverse
	}
	return s.Scan(ctx, symbols), nil
}

type outcome struct {
	long, short *model.Signal
	failed      bool
}

// Scan evaluates symbols and blocks until all of them have completed.
// Signals are collected in arrival order.
func (s *Scanner) Scan(ctx context.Context, symbols []string) *Result {
	started := time.Now()
	symbols = dedupe(symbols)
	result := &Result{
		Long:    []model.Signal{},
		Short:   []model.Signal{},
		Scanned: len(symbols),
		Started: started,
	}
	if len(symbols) == 0 {
		return result
	}

	jobs := make(chan string, len(symbols))
	for _, sym := range symbols {
		jobs <- sym
	}
	close(jobs)

	results := make(chan outcome, len(symbols))
	workers := s.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				results <- s.evaluate(ctx, sym)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		if o.failed {
			result.Failed++
		}
		if o.long != nil {
			result.Long = append(result.Long, *o.long)
			s.observer.ObserveSignal(model.SideLong)
		}
		if o.short != nil {
			result.Short = append(result.Short, *o.short)
			s.observer.ObserveSignal(model.SideShort)
		}
	}

	result.Duration = time.Since(started)
	s.observer.ObserveScan(len(symbols), result.Duration)
	s.log.Info().
		Int("symbols", result.Scanned).
		Int("failed", result.Failed).
		Int("long", len(result.Long)).
		Int("short", len(result.Short)).
		Dur("took", result.Duration).
		Msg("scan complete")
	return result
}

// evaluate contains every failure of one symbol, panics included.
func (s *Scanner) evaluate(ctx context.Context, symbol string) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("symbol", symbol).Str("kind", OutcomePanic).Interface("panic", r).Msg("symbol evaluation panicked")
			s.observer.ObserveSymbol(OutcomePanic)
			o = outcome{failed: true}
		}
	}()

	long, short, err := s.detect(ctx, symbol)
	if err != nil {
		kind := classify(err)
		s.log.Warn().Err(err).Str("symbol", symbol).Str("kind", kind).Msg("symbol skipped")
		s.observer.ObserveSymbol(kind)
		return outcome{failed: true}
	}
	s.observer.ObserveSymbol(OutcomeOK)
	return outcome{long: long, short: short}
}

func classify(err error) string {
	var fe *collector.FetchError
	var ce *calculator.ConversionError
	switch {
	case errors.As(err, &fe):
		return OutcomeFetch
	case errors.As(err, &ce):
		return OutcomeConversion
	default:
		return OutcomeOther
	}
}

// dedupe drops blank and repeated symbols, keeping first-seen order.
func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

type nopObserver struct{}

func (nopObserver) ObserveSymbol(string)           {}
func (nopObserver) ObserveSignal(model.Side)       {}
func (nopObserver) ObserveScan(int, time.Duration) {}
