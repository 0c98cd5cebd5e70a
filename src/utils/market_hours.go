package utils

import (
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// MarketHours reports the exchange session status broadcast with snapshots.
// The game market is synthetic, so a single reference calendar (NYSE) is
// enough; when the calendar cannot be loaded a Mon-Fri 09:30-16:00 fallback
// applies.
// -----------------------------------------------------------------------------

// Session status values on the wire.
const (
	MarketOpen       = "open"
	MarketClosed     = "closed"
	MarketPreMarket  = "pre_market"
	MarketAfterHours = "after_hours"
)

type MarketHours struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewMarketHours loads the reference calendar (ISO 10383 MIC "xnys").
func NewMarketHours() *MarketHours {
	cal := calendar.GetCalendar("xnys")
	if cal == nil {
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &MarketHours{Fallback: true, Timezone: nyLoc}
	}

	return &MarketHours{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether date falls on a business day.
func (mh *MarketHours) IsTradingDay(date time.Time) bool {
	if mh.Timezone != nil {
		date = date.In(mh.Timezone)
	}

	if mh.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return mh.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the market is in its regular session at t.
func (mh *MarketHours) IsOpen(t time.Time) bool {
	if mh.Timezone != nil {
		t = t.In(mh.Timezone)
	}

	if mh.Fallback {
		if !mh.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		// 9:30 - 16:00 NY Time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return mh.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// Status maps t onto the session states the game client displays.
func (mh *MarketHours) Status(t time.Time) string {
	if mh.Timezone != nil {
		t = t.In(mh.Timezone)
	}

	if !mh.IsTradingDay(t) {
		return MarketClosed
	}
	if mh.IsOpen(t) {
		return MarketOpen
	}

	hour := t.Hour()
	switch {
	case hour < 4:
		return MarketClosed
	case hour < 10: // 04:00 - 09:30
		return MarketPreMarket
	case hour < 20: // 16:00 - 20:00
		return MarketAfterHours
	default:
		return MarketClosed
	}
}
