package model

import "time"

// DaysPerPeriod is the fixed month length used for schedule dates, end dates
// and next-payment dates. Calendar months are intentionally not used.
const DaysPerPeriod = 30

// internalPlaces is the precision money is held at between operations.
// Rounding to cents happens only when values leave the engine.
const internalPlaces = 8

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DaysBetween returns the whole days from a to b (negative when b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// MonthWindow returns [first day of month, first day of next month).
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
