package lodger

import (
	"time"
)

// =============================================================================
// DATE - Calendar day abstraction (due dates and deadlines are day-granular)
// =============================================================================

// Date is a calendar day in UTC. Payment due dates, notice deadlines and
// tenancy boundaries are all day-granular; normalizing here keeps every
// comparison free of time-of-day surprises.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now().UTC()) }

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }
func (d Date) IsZero() bool              { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonthsClamped steps forward n calendar months, clamping the target
// day-of-month to the length of the destination month. Unlike
// time.AddDate, Jan 31 + 1 month lands on Feb 28/29, never March 2/3.
func (d Date) AddMonthsClamped(n int) Date {
	return clampedDayInMonth(d.Year(), d.Month()+time.Month(n), d.Day())
}

// clampedDayInMonth builds a date in the given (possibly out-of-range)
// month, pulling the day back to the month's last day when it overflows.
func clampedDayInMonth(year int, month time.Month, day int) Date {
	// Normalize month overflow first (e.g. month 14 -> Feb next year).
	norm := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := DaysInMonth(norm.Year(), norm.Month())
	if day > last {
		day = last
	}
	return NewDate(norm.Year(), norm.Month(), day)
}

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the whole days from a to b (negative if b before a).
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t).Hours() / 24)
}

// ParseDate parses an ISO "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}
