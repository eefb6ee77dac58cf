// Package bounds computes which Jalali years, months and days a date picker
// may offer, given a "maximum selectable date" derived from today.
package bounds

import (
	"errors"
	"fmt"
	"time"

	"github.com/lululau/jcal/internal/jalali"
)

// Default year spans, as returned by Defaults.
const (
	DefaultPastYears   = 200
	DefaultFutureYears = 100
)

// ErrInvalidConfig is returned by New for configurations that cannot
// describe a selectable range.
var ErrInvalidConfig = errors.New("bounds: invalid configuration")

// MonthLength returns the number of days in a Jalali month. Esfand uses the
// 33-year cycle rule. Months outside 1..12 report 0.
func MonthLength(month, year int) int {
	switch {
	case month >= 1 && month <= 6:
		return 31
	case month >= 7 && month <= 11:
		return 30
	case month == 12:
		if jalali.IsLeapYear(year) {
			return 30
		}
		return 29
	}
	return 0
}

// YearRange is an inclusive range of Jalali years.
type YearRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Low && year <= r.High
}

// Years lists every year of the range in ascending order.
func (r YearRange) Years() []int {
	if r.High < r.Low {
		return nil
	}
	out := make([]int, 0, r.High-r.Low+1)
	for y := r.Low; y <= r.High; y++ {
		out = append(out, y)
	}
	return out
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d..%d", r.Low, r.High)
}

// Config holds the picker inputs. A nil YearRange derives the range from
// today and the past/future spans. Zero spans are taken literally; start from
// Defaults for the usual 200/100.
type Config struct {
	YearRange     *YearRange
	FutureEnabled bool
	PastYears     int
	FutureYears   int
}

// Defaults returns a configuration with future selection disabled and the
// default spans.
func Defaults() Config {
	return Config{PastYears: DefaultPastYears, FutureYears: DefaultFutureYears}
}

// SelectionBounds is the maximum selectable Jalali date.
type SelectionBounds struct {
	MaxYear  int `json:"max_year"`
	MaxMonth int `json:"max_month"`
	MaxDay   int `json:"max_day"`
}

// Calculator answers range queries against bounds fixed at construction.
// It is immutable and safe for concurrent use.
type Calculator struct {
	cfg    Config
	today  jalali.Date
	bounds SelectionBounds
}

type options struct {
	now func() time.Time
	loc *time.Location
}

// Option configures New.
type Option func(*options)

// WithNow overrides the clock used to determine today.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLocation sets the zone in which today's date is read.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// New validates cfg, resolves today's Jalali date and fixes the selection
// bounds.
func New(cfg Config, opts ...Option) (*Calculator, error) {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.PastYears < 0 || cfg.FutureYears < 0 {
		return nil, fmt.Errorf("%w: negative year span (past %d, future %d)", ErrInvalidConfig, cfg.PastYears, cfg.FutureYears)
	}
	if r := cfg.YearRange; r != nil {
		if r.Low > r.High {
			return nil, fmt.Errorf("%w: year range %s is inverted", ErrInvalidConfig, r)
		}
		copied := *r
		cfg.YearRange = &copied
	}

	today, err := jalali.FromTime(o.now(), o.loc)
	if err != nil {
		return nil, fmt.Errorf("resolve today: %w", err)
	}

	c := &Calculator{cfg: cfg, today: today}
	c.bounds = c.computeBounds()
	return c, nil
}

func (c *Calculator) computeBounds() SelectionBounds {
	b := SelectionBounds{
		MaxYear:  c.today.Year,
		MaxMonth: c.today.Month,
		MaxDay:   c.today.Day,
	}
	if c.cfg.FutureEnabled {
		b.MaxYear += c.cfg.FutureYears
		b.MaxMonth = 12
		b.MaxDay = 31
	}
	if c.cfg.YearRange != nil {
		b.MaxYear = c.cfg.YearRange.High
	}
	return b
}

// Today returns the Jalali date the bounds were computed from.
func (c *Calculator) Today() jalali.Date {
	return c.today
}

// Bounds returns the maximum selectable date.
func (c *Calculator) Bounds() SelectionBounds {
	return c.bounds
}

// FutureEnabled reports whether dates after today may be selected.
func (c *Calculator) FutureEnabled() bool {
	return c.cfg.FutureEnabled
}

// LastSelectableDay returns the last day of month that may be selected in
// year. Only the maximum year/month pair is clamped.
func (c *Calculator) LastSelectableDay(month, year int) int {
	n := MonthLength(month, year)
	if year == c.bounds.MaxYear && month == c.bounds.MaxMonth {
		return min(c.bounds.MaxDay, n)
	}
	return n
}

// LastSelectableMonth returns the last month that may be selected in year.
func (c *Calculator) LastSelectableMonth(year int) int {
	if year == c.bounds.MaxYear {
		return c.bounds.MaxMonth
	}
	return 12
}

// SelectableYearRange returns the explicit range when one was configured and
// otherwise a span ending at the maximum year.
func (c *Calculator) SelectableYearRange() YearRange {
	if c.cfg.YearRange != nil {
		return *c.cfg.YearRange
	}
	span := c.cfg.PastYears
	if c.cfg.FutureEnabled {
		span += c.cfg.FutureYears
	}
	return YearRange{Low: c.bounds.MaxYear - span, High: c.bounds.MaxYear}
}

// SelectableMonthRange returns the selectable months of year.
func (c *Calculator) SelectableMonthRange(year int) []int {
	return seq(c.LastSelectableMonth(year))
}

// SelectableDayRange returns the selectable days of a month.
func (c *Calculator) SelectableDayRange(month, year int) []int {
	return seq(c.LastSelectableDay(month, year))
}

// Contains reports whether d can be picked.
func (c *Calculator) Contains(d jalali.Date) bool {
	if !c.SelectableYearRange().Contains(d.Year) {
		return false
	}
	if d.Month < 1 || d.Month > c.LastSelectableMonth(d.Year) {
		return false
	}
	return d.Day >= 1 && d.Day <= c.LastSelectableDay(d.Month, d.Year)
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
