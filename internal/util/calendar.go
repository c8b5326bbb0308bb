package util

import (
	"time"
)

// NSE cash-market session bounds, minutes from midnight IST.
const (
	sessionOpenMin  = 9*60 + 15  // 09:15
	sessionCloseMin = 15*60 + 30 // 15:30
)

// TradingCalendar provides market-hours awareness for the NSE cash session.
// Exchange holidays are not modelled; the stream simply goes quiet on those
// days and the poller keeps the board populated with previous-close data.
type TradingCalendar struct {
	loc *time.Location
}

// NewTradingCalendar creates a TradingCalendar in the exchange's local time
// zone (IST).
func NewTradingCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST has no DST; a fixed offset is equivalent.
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &TradingCalendar{loc: loc}
}

// IsMarketOpen returns whether the NSE cash session is open at time t:
// Monday to Friday, 09:15 to 15:30 IST.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	local := t.In(tc.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	mins := local.Hour()*60 + local.Minute()
	return mins >= sessionOpenMin && mins < sessionCloseMin
}

// NextOpen returns the next session open at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	local := t.In(tc.loc)
	for {
		open := time.Date(local.Year(), local.Month(), local.Day(), 9, 15, 0, 0, tc.loc)
		wd := open.Weekday()
		if wd != time.Saturday && wd != time.Sunday && !open.Before(local) {
			return open
		}
		local = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tc.loc).AddDate(0, 0, 1)
	}
}

// NextClose returns the next session close at or after t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	local := t.In(tc.loc)
	for {
		end := time.Date(local.Year(), local.Month(), local.Day(), 15, 30, 0, 0, tc.loc)
		wd := end.Weekday()
		if wd != time.Saturday && wd != time.Sunday && !end.Before(local) {
			return end
		}
		local = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tc.loc).AddDate(0, 0, 1)
	}
}
