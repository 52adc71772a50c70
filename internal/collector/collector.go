package collector

import (
	"context"
	"fmt"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
	"BreakoutSentinel/internal/strategy"
)

// Collector fetches candles for one symbol and runs them through the
// indicator calculator and the breakout evaluator.
type Collector struct {
	Source    CandleSource
	Evaluator *strategy.Evaluator
	Interval  string
	Limit     int
}

// NewCollector creates a new Collector.
func NewCollector(source CandleSource, ev *strategy.Evaluator, interval string, limit int) *Collector {
	return &Collector{Source: source, Evaluator: ev, Interval: interval, Limit: limit}
}

// Detect evaluates the latest bar of symbol. A short history yields no
// signal and no error.
func (c *Collector) Detect(ctx context.Context, symbol string) (long, short *model.Signal, err error) {
	raw, err := c.Source.FetchRecentCandles(ctx, symbol, c.Interval, c.Limit)
	if err != nil {
		return nil, nil, err
	}
	rows, err := calculator.Compute(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("compute indicators %s: %w", symbol, err)
	}
	long, short = c.Evaluator.Evaluate(symbol, rows)
	return long, short, nil
}
