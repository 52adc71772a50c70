package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"BreakoutSentinel/internal/notifier"
	"BreakoutSentinel/internal/scanner"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// NotifyObserver counts undelivered reports.
type NotifyObserver interface {
	NotifyFailed()
}

// Options configures a Scheduler.
type Options struct {
	Interval string         // candle interval shown in reports
	Location *time.Location // zone for report times
	Timeout  time.Duration  // upper bound for one scan, 0 for none
	Metrics  NotifyObserver // optional
}

// Scheduler runs the breakout scan on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Notifier notifier.Notifier
	Ctx      context.Context

	opts    Options
	log     zerolog.Logger
	entry   cron.EntryID
	running atomic.Bool

	mu   sync.Mutex
	last *scanner.Result
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, n notifier.Notifier, opts Options, log zerolog.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		Scanner:  sc,
		Notifier: n,
		Ctx:      ctx,
		opts:     opts,
		log:      log,
	}
}

// Register schedules the scan task. spec uses the six-field cron format and
// is evaluated in UTC, where exchange bars are aligned.
func (s *Scheduler) Register(spec string) error {
	id, err := s.Cron.AddFunc(spec, s.scanTask)
	if err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	s.entry = id
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Time("next", s.NextRun()).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// NextRun returns the next scheduled scan time, zero if none is registered.
func (s *Scheduler) NextRun() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.Cron.Entry(s.entry).Next
}

// LastResult returns the most recent completed scan, or nil.
func (s *Scheduler) LastResult() *scanner.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// RunNow executes a scan immediately and reports it. It returns false when
// another scan is still running.
func (s *Scheduler) RunNow() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn().Msg("scan already running, skipped")
		return false
	}
	defer s.running.Store(false)

	ctx := s.Ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	s.log.Info().Msg("running scan")
	res, err := s.Scanner.RunScan(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scan failed")
		s.trySend(fmt.Sprintf("❌ scan failed: %v", err))
		return true
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	s.trySend(notifier.FormatReport(res, s.opts.Interval, s.opts.Location))
	return true
}

func (s *Scheduler) scanTask() {
	s.RunNow()
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch command {
	case "/scan":
		if !s.RunNow() {
			return "⏳ a scan is already running"
		}
		return ""
	case "/status":
		return notifier.FormatStatus(s.LastResult(), s.NextRun(), s.opts.Location)
	default:
		return "Available commands:\n• /scan - run a scan now\n• /status - last scan summary"
	}
}

// trySend delivers text; failures are logged and never returned.
func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		s.log.Error().Err(err).Msg("send notification")
		if s.opts.Metrics != nil {
			s.opts.Metrics.NotifyFailed()
		}
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
