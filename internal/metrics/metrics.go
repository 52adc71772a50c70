package metrics

import (
	"time"

	"BreakoutSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exports scan measurements to Prometheus.
type Recorder struct {
	scansTotal   prometheus.Counter
	scanDuration prometheus.Histogram
	universeSize prometheus.Gauge
	symbolsTotal *prometheus.CounterVec
	signalsTotal *prometheus.CounterVec
	notifyErrors prometheus.Counter
}

// New registers the scanner metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		scansTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "breakout_scans_total",
			Help: "Completed scan cycles",
		}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "breakout_scan_duration_seconds",
			Help:    "Wall time of a full universe scan",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		universeSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "breakout_universe_symbols",
			Help: "Symbols evaluated in the last scan",
		}),
		symbolsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_symbols_total",
			Help: "Per-symbol evaluations by outcome",
		}, []string{"outcome"}),
		signalsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_signals_total",
			Help: "Breakout signals emitted by side",
		}, []string{"side"}),
		notifyErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "breakout_notify_errors_total",
			Help: "Reports that could not be delivered",
		}),
	}
}

func (r *Recorder) ObserveSymbol(outcome string) {
	r.symbolsTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveSignal(side model.Side) {
	r.signalsTotal.WithLabelValues(string(side)).Inc()
}

func (r *Recorder) ObserveScan(universe int, d time.Duration) {
	r.scansTotal.Inc()
	r.scanDuration.Observe(d.Seconds())
	r.universeSize.Set(float64(universe))
}

// NotifyFailed counts an undelivered report.
func (r *Recorder) NotifyFailed() {
	r.notifyErrors.Inc()
}
