package collector

import (
	"context"
	"fmt"

	"BreakoutSentinel/internal/model"
)

// CandleSource supplies recent candles for one symbol.
type CandleSource interface {
	// FetchRecentCandles returns up to limit most recent candles in ascending
	// open-time order.
	FetchRecentCandles(ctx context.Context, symbol, interval string, limit int) ([]model.RawCandle, error)
	Name() string
}

// UniverseSource lists the symbols currently eligible for scanning.
type UniverseSource interface {
	ListTradableSymbols(ctx context.Context) ([]string, error)
}

// FetchError is a transport or API failure from a data source.
type FetchError struct {
	Symbol     string // empty for universe requests
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	target := e.Op
	if e.Symbol != "" {
		target = e.Op + " " + e.Symbol
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", target, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
