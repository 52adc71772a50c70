package strategy

import (
	"math"
	"time"

	"BreakoutSentinel/internal/calculator"
	"BreakoutSentinel/internal/model"
)

// TimestampLayout is how signal bar times are rendered.
const TimestampLayout = "2006-01-02 15:04"

// Config holds the breakout rule thresholds.
type Config struct {
	MinRows        int            // fewer rows never signal
	BreakoutReturn float64        // minimum absolute single-bar return
	Location       *time.Location // zone used to render signal timestamps
}

// DefaultConfig returns the reference rule set: 30 rows, 5% bar return, UTC+9.
func DefaultConfig() Config {
	return Config{
		MinRows:        30,
		BreakoutReturn: 0.05,
		Location:       time.FixedZone("UTC+9", 9*60*60),
	}
}

// Evaluator classifies the latest bar of an indicator series.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator. A nil Location falls back to UTC.
func NewEvaluator(cfg Config) *Evaluator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate checks the most recent row of rows for a long and a short breakout.
// Both results are independent; either, both or neither may be set.
func (e *Evaluator) Evaluate(symbol string, rows []model.IndicatorRow) (long, short *model.Signal) {
	n := len(rows)
	if n < e.cfg.MinRows || n < calculator.BandWindow+1 {
		return nil, nil
	}

	row := rows[n-1]
	prev := rows[n-2]
	last10 := rows[n-11 : n-1]

	closes := make([]float64, n)
	for i, r := range rows {
		closes[i] = r.Close
	}
	high20, _ := calculator.WindowHigh(closes, calculator.BandWindow)
	low20, _ := calculator.WindowLow(closes, calculator.BandWindow)

	var dippedBelowSMA5, poppedAboveSMA5 bool
	for _, r := range last10 {
		if r.Close < r.SMA5 {
			dippedBelowSMA5 = true
		}
		if r.Close > r.SMA5 {
			poppedAboveSMA5 = true
		}
	}

	volumeConfirmed := row.Volume > row.SMAVolume20

	isLong := row.Close > row.UpperBand &&
		row.Close == high20 &&
		row.UpperBand > prev.UpperBand &&
		row.LowerBand < prev.LowerBand &&
		row.Return >= e.cfg.BreakoutReturn &&
		volumeConfirmed &&
		dippedBelowSMA5

	// No upper-band expansion test on the short side.
	isShort := row.Close < row.LowerBand &&
		row.Close == low20 &&
		row.LowerBand < prev.LowerBand &&
		row.Return <= -e.cfg.BreakoutReturn &&
		volumeConfirmed &&
		poppedAboveSMA5

	if isLong {
		long = e.signal(symbol, model.SideLong, row)
	}
	if isShort {
		short = e.signal(symbol, model.SideShort, row)
	}
	return long, short
}

func (e *Evaluator) signal(symbol string, side model.Side, row model.IndicatorRow) *model.Signal {
	return &model.Signal{
		Symbol:    symbol,
		Side:      side,
		OpenTime:  row.OpenTime,
		Timestamp: row.OpenTime.In(e.cfg.Location).Format(TimestampLayout),
		ReturnPct: roundTo(row.Return*100, 2),
	}
}

// roundTo rounds exact halves to even.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
