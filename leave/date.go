package leave

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date at day granularity, always UTC.
// The leave ledger never cares about hours: an application is for a
// calendar day (or half of one), and the leave year is the calendar
// year containing that day.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be in YYYY-MM-DD format: %w", err)
	}
	return Date{Time: t.UTC()}, nil
}

// DateOf truncates a time.Time to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

// LeaveYear returns the leave year bucketing this date.
// Leave years are plain calendar years (Jan 1 - Dec 31).
func (d Date) LeaveYear() int { return d.Year() }

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock supplies time to the engine. Carry-over expiry depends on the
// evaluation date, so the clock is injected rather than read implicitly.
// Now buckets to a day; Instant keeps the full wall-clock time for
// record timestamps (submission and decision ordering).
type Clock interface {
	Now() Date
	Instant() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() Date          { return DateOf(time.Now()) }
func (SystemClock) Instant() time.Time { return time.Now().UTC() }

// FixedClock always returns the same date. Used in tests and demos.
// Its instant is midnight of that date.
type FixedClock struct {
	Current Date
}

func (c FixedClock) Now() Date          { return c.Current }
func (c FixedClock) Instant() time.Time { return c.Current.Time }
