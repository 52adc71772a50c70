package model

import (
	"math"
	"time"
)

// RawCandle is a candle as delivered by the exchange, numeric fields still in
// their decimal string form.
type RawCandle struct {
	OpenTime time.Time
	Open     string
	High     string
	Low      string
	Close    string
	Volume   string
}

// Candle represents a single parsed candlestick bar.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// IndicatorRow is one candle position augmented with rolling indicators.
// Values whose window is not yet filled are NaN.
type IndicatorRow struct {
	OpenTime    time.Time
	Close       float64
	High        float64
	Low         float64
	Volume      float64
	SMA5        float64
	SMA20       float64
	Std20       float64
	UpperBand   float64
	LowerBand   float64
	SMAVolume20 float64
	Return      float64
}

// Missing reports whether an indicator value is undefined.
func Missing(v float64) bool {
	return math.IsNaN(v)
}
