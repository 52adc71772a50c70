package calculator

import (
	"fmt"

	"BreakoutSentinel/internal/model"

	"github.com/shopspring/decimal"
)

// Window lengths of the breakout indicator set.
const (
	ShortWindow = 5
	BandWindow  = 20
	BandWidth   = 2.0
)

// ConversionError reports a candle field that is not a valid decimal number.
type ConversionError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("candle %d: field %s: invalid number %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ParseCandles converts exchange candles into numeric candles.
func ParseCandles(raw []model.RawCandle) ([]model.Candle, error) {
	candles := make([]model.Candle, len(raw))
	for i, rc := range raw {
		fields := []struct {
			name string
			src  string
			dst  *float64
		}{
			{"open", rc.Open, &candles[i].Open},
			{"high", rc.High, &candles[i].High},
			{"low", rc.Low, &candles[i].Low},
			{"close", rc.Close, &candles[i].Close},
			{"volume", rc.Volume, &candles[i].Volume},
		}
		for _, f := range fields {
			d, err := decimal.NewFromString(f.src)
			if err != nil {
				return nil, &ConversionError{Index: i, Field: f.name, Value: f.src, Err: err}
			}
			*f.dst = d.InexactFloat64()
		}
		candles[i].OpenTime = rc.OpenTime
	}
	return candles, nil
}

// Compute parses raw candles and returns one IndicatorRow per candle, in order.
func Compute(raw []model.RawCandle) ([]model.IndicatorRow, error) {
	candles, err := ParseCandles(raw)
	if err != nil {
		return nil, err
	}
	return Indicators(candles), nil
}

// Indicators augments candles with SMA5, SMA20, Bollinger bands (20, 2σ),
// the 20-bar volume average and the bar-over-bar return.
func Indicators(candles []model.Candle) []model.IndicatorRow {
	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	sma5 := RollingMean(closes, ShortWindow)
	sma20 := RollingMean(closes, BandWindow)
	std20 := RollingStd(closes, BandWindow)
	smaVol20 := RollingMean(volumes, BandWindow)
	returns := PctChange(closes)

	rows := make([]model.IndicatorRow, len(candles))
	for i, c := range candles {
		rows[i] = model.IndicatorRow{
			OpenTime:    c.OpenTime,
			Close:       c.Close,
			High:        c.High,
			Low:         c.Low,
			Volume:      c.Volume,
			SMA5:        sma5[i],
			SMA20:       sma20[i],
			Std20:       std20[i],
			UpperBand:   sma20[i] + BandWidth*std20[i],
			LowerBand:   sma20[i] - BandWidth*std20[i],
			SMAVolume20: smaVol20[i],
			Return:      returns[i],
		}
	}
	return rows
}
