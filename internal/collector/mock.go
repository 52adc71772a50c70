package collector

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"BreakoutSentinel/internal/model"
)

// MockSource returns fixed data for development and testing. It implements
// both CandleSource and UniverseSource.
type MockSource struct {
	Symbols     []string
	Series      map[string][]model.RawCandle
	Errors      map[string]error
	UniverseErr error

	mu   sync.Mutex
	seen []string
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) ListTradableSymbols(_ context.Context) ([]string, error) {
	if m.UniverseErr != nil {
		return nil, m.UniverseErr
	}
	return append([]string(nil), m.Symbols...), nil
}

func (m *MockSource) FetchRecentCandles(_ context.Context, symbol, _ string, limit int) ([]model.RawCandle, error) {
	m.mu.Lock()
	m.seen = append(m.seen, symbol)
	m.mu.Unlock()

	if err, ok := m.Errors[symbol]; ok {
		return nil, &FetchError{Symbol: symbol, Op: "klines", Err: err}
	}
	series := m.Series[symbol]
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series, nil
}

// Calls returns how many candle requests were served.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// Requested returns the symbols requested so far, sorted.
func (m *MockSource) Requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.seen...)
	sort.Strings(out)
	return out
}

// SeriesFromCloses builds raw candles spaced step apart from start. Volumes
// default to 1000 when volumes is shorter than closes.
func SeriesFromCloses(start time.Time, step time.Duration, closes, volumes []float64) []model.RawCandle {
	out := make([]model.RawCandle, len(closes))
	for i, c := range closes {
		vol := 1000.0
		if i < len(volumes) {
			vol = volumes[i]
		}
		s := strconv.FormatFloat(c, 'f', -1, 64)
		out[i] = model.RawCandle{
			OpenTime: start.Add(time.Duration(i) * step),
			Open:     s,
			High:     s,
			Low:      s,
			Close:    s,
			Volume:   strconv.FormatFloat(vol, 'f', -1, 64),
		}
	}
	return out
}

// NewDemoSource returns a three-symbol universe with one long breakout, one
// short breakout and one quiet series ending at the last closed 4h bar.
func NewDemoSource(now time.Time) *MockSource {
	const n = 50
	step := 4 * time.Hour
	start := now.UTC().Truncate(step).Add(-n * step)

	zigzag := func(last float64) []model.RawCandle {
		closes := make([]float64, n)
		volumes := make([]float64, n)
		for i := range closes {
			closes[i] = 100
			if i%2 == 1 {
				closes[i] = 101
			}
			volumes[i] = 1000
		}
		closes[n-1] = last
		volumes[n-1] = 2500
		return SeriesFromCloses(start, step, closes, volumes)
	}

	return &MockSource{
		Symbols: []string{"DEMOUPUSDT", "DEMODOWNUSDT", "DEMOFLATUSDT"},
		Series: map[string][]model.RawCandle{
			"DEMOUPUSDT":   zigzag(106),
			"DEMODOWNUSDT": zigzag(94),
			"DEMOFLATUSDT": zigzag(100.5),
		},
	}
}
