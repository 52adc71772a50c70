package model

import "time"

// Side is the direction of a breakout.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Signal is a breakout detected on the most recent bar of a symbol.
type Signal struct {
	Symbol    string
	Side      Side
	OpenTime  time.Time
	Timestamp string  // OpenTime rendered as "2006-01-02 15:04" in the reporting zone
	ReturnPct float64 // bar return in percent, two decimals
}
