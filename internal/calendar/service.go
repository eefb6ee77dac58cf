package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/months"
)

// Supported Jalali year range, as covered by the break table.
const (
	MinSupportedYear = jalali.FirstYear
	MaxSupportedYear = jalali.LastYear
)

// ViewMode indicates whether we display a single month or an entire year.
type ViewMode int

const (
	ModeMonth ViewMode = iota
	ModeYear
)

// Request captures the Jalali year/month/mode that should be rendered.
type Request struct {
	Year  int
	Month int
	Mode  ViewMode
}

// Normalize keeps the month within 1..12 by rolling the year value.
func (r Request) Normalize() Request {
	for r.Month > 12 {
		r.Month -= 12
		r.Year++
	}
	for r.Month < 1 {
		r.Month += 12
		r.Year--
	}
	return r
}

// NextMonth moves the request to the following month.
func (r Request) NextMonth() Request {
	r.Month++
	return r.Normalize()
}

// PreviousMonth moves the request to the preceding month.
func (r Request) PreviousMonth() Request {
	r.Month--
	return r.Normalize()
}

// NextYear moves to the following year.
func (r Request) NextYear() Request {
	r.Year++
	return r
}

// PreviousYear moves to the preceding year.
func (r Request) PreviousYear() Request {
	r.Year--
	return r
}

// Clamp pulls the request into the selectable range of c: the year into
// SelectableYearRange and the month to at most LastSelectableMonth.
func (r Request) Clamp(c *bounds.Calculator) Request {
	r = r.Normalize()
	if c == nil {
		return r
	}
	yr := c.SelectableYearRange()
	r.Year = min(max(r.Year, yr.Low), yr.High)
	r.Month = min(r.Month, c.LastSelectableMonth(r.Year))
	return r
}

// Day is one cell of a month grid.
type Day struct {
	// Date is the zero value for padding days outside the supported range.
	Date      jalali.Date
	Gregorian time.Time
	Weekday   time.Weekday
	InMonth   bool
	IsToday   bool
	// Selectable is false for days past the configured bounds. The bounds
	// size Esfand with the 33-year cycle, so 30 Esfand can disagree with the
	// grid.
	Selectable  bool
	HolidayInfo *holidays.Info
}

// IsFriday reports whether the day is the weekly day off.
func (d Day) IsFriday() bool {
	return d.Weekday == time.Friday
}

// IsOff reports whether the day is a Friday or a public holiday.
func (d Day) IsOff() bool {
	return d.IsFriday() || (d.HolidayInfo != nil && d.HolidayInfo.IsHoliday)
}

// SecondaryLabel is rendered beneath the Jalali day: the Gregorian day
// number, or the Gregorian month abbreviation on the first of a month.
func (d Day) SecondaryLabel() string {
	if d.Gregorian.IsZero() {
		return ""
	}
	if d.Gregorian.Day() == 1 {
		return d.Gregorian.Format("Jan")
	}
	return fmt.Sprintf("%d", d.Gregorian.Day())
}

// MonthView describes a Jalali month laid out in Saturday-first weeks.
type MonthView struct {
	Year     int
	Month    int
	Title    string
	Weekdays []string
	Weeks    [][]Day
}

// weekOrder is the Iranian week, Saturday through Friday.
var weekOrder = [7]time.Weekday{
	time.Saturday, time.Sunday, time.Monday, time.Tuesday,
	time.Wednesday, time.Thursday, time.Friday,
}

// Service materialises Jalali month and year views.
type Service struct {
	now         func() time.Time
	loc         *time.Location
	holidayData holidays.Data
	namer       *months.Namer
	bounds      *bounds.Calculator
}

// Option configures the Service.
type Option func(*Service)

// WithNow overrides the clock, which is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone used to decide which day is today.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.loc = loc
	}
}

// WithHolidays sets the holiday data for the service.
func WithHolidays(data holidays.Data) Option {
	return func(s *Service) {
		s.holidayData = data
	}
}

// WithNamer sets the language of titles and weekday headers.
func WithNamer(n *months.Namer) Option {
	return func(s *Service) {
		s.namer = n
	}
}

// WithBounds marks days outside the calculator's range as not selectable.
func WithBounds(c *bounds.Calculator) Option {
	return func(s *Service) {
		s.bounds = c
	}
}

// NewService constructs a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.namer == nil {
		s.namer, _ = months.New(months.DefaultLanguage)
	}
	return s
}

var (
	// ErrYearOutOfRange indicates the requested year is unsupported.
	ErrYearOutOfRange = fmt.Errorf("year must be between %d and %d", MinSupportedYear, MaxSupportedYear)
	// ErrInvalidMonth indicates the month is not in the 1..12 range.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// HasHolidayData reports whether holiday data was supplied.
func (s *Service) HasHolidayData() bool {
	return len(s.holidayData) > 0
}

// Bounds returns the calculator given with WithBounds, if any.
func (s *Service) Bounds() *bounds.Calculator {
	return s.bounds
}

// Today returns the current Jalali date in the service's location.
func (s *Service) Today() (jalali.Date, error) {
	return jalali.FromTime(s.now(), s.loc)
}

// Month builds a MonthView for a Jalali year and month.
func (s *Service) Month(year, month int) (MonthView, error) {
	if year < MinSupportedYear || year > MaxSupportedYear {
		return MonthView{}, ErrYearOutOfRange
	}
	if month < 1 || month > 12 {
		return MonthView{}, ErrInvalidMonth
	}

	first, err := jalali.JalaliToJDN(year, month, 1)
	if err != nil {
		return MonthView{}, err
	}
	length, err := jalali.DaysInMonth(year, month)
	if err != nil {
		return MonthView{}, err
	}
	// Days since the preceding Saturday; JDN+1 mod 7 is the time.Weekday.
	offset := (first + 2) % 7
	last := first + length - 1
	today, _ := s.Today()

	weeks := make([][]Day, 0, 6)
	for cursor := first - offset; cursor <= last; {
		week := make([]Day, 7)
		for i := range week {
			week[i] = s.buildDay(cursor, year, month, today)
			cursor++
		}
		weeks = append(weeks, week)
	}

	return MonthView{
		Year:     year,
		Month:    month,
		Title:    s.title(year, month),
		Weekdays: s.weekdayHeaders(),
		Weeks:    weeks,
	}, nil
}

// Year returns the MonthView list for an entire Jalali year.
func (s *Service) Year(year int) ([]MonthView, error) {
	if year < MinSupportedYear || year > MaxSupportedYear {
		return nil, ErrYearOutOfRange
	}
	views := make([]MonthView, 0, 12)
	for m := 1; m <= 12; m++ {
		view, err := s.Month(year, m)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) buildDay(jdn, year, month int, today jalali.Date) Day {
	gy, gm, gd := jalali.FromJDN(jdn, jalali.Gregorian)
	day := Day{
		Gregorian: time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, s.loc),
		Weekday:   time.Weekday((jdn + 1) % 7),
	}
	d, err := jalali.JDNToJalali(jdn)
	if err != nil {
		return day
	}
	day.Date = d
	day.InMonth = d.Year == year && d.Month == month
	day.IsToday = d == today
	day.Selectable = s.bounds == nil || s.bounds.Contains(d)
	day.HolidayInfo = holidays.ForDate(s.holidayData, d)
	return day
}

func (s *Service) title(year, month int) string {
	if s.namer != nil {
		if t, err := s.namer.MonthTitle(year, month); err == nil {
			return t
		}
	}
	return fmt.Sprintf("%d-%02d", year, month)
}

func (s *Service) weekdayHeaders() []string {
	out := make([]string, len(weekOrder))
	for i, wd := range weekOrder {
		if s.namer != nil {
			out[i] = s.namer.Weekday(wd)
		} else {
			out[i] = wd.String()[:2]
		}
	}
	return out
}
