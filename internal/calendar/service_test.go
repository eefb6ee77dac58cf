package calendar

import (
	"testing"
	"time"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/months"
)

// 2024-08-05 is 1403-05-15.
var fixedNow = time.Date(2024, 8, 5, 10, 0, 0, 0, time.UTC)

func newTestService(opts ...Option) *Service {
	base := []Option{
		WithNow(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}
	return NewService(append(base, opts...)...)
}

func TestMonthGeneratesSaturdayFirstWeeks(t *testing.T) {
	svc := newTestService()
	view, err := svc.Month(1403, 1)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	if view.Title != "Farvardin 1403" {
		t.Fatalf("unexpected title %q", view.Title)
	}
	if len(view.Weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(view.Weeks))
	}
	first := view.Weeks[0][0]
	if first.Weekday != time.Saturday {
		t.Fatalf("calendar should start on Saturday, got %v", first.Weekday)
	}
	if first.Date != (jalali.Date{Year: 1402, Month: 12, Day: 26}) || first.InMonth {
		t.Fatalf("unexpected leading day %+v", first)
	}
	// 1 Farvardin 1403 is a Wednesday, the fifth column.
	nowruz := view.Weeks[0][4]
	if nowruz.Date != (jalali.Date{Year: 1403, Month: 1, Day: 1}) || !nowruz.InMonth {
		t.Fatalf("unexpected Nowruz cell %+v", nowruz)
	}
	if got := nowruz.Gregorian.Format("2006-01-02"); got != "2024-03-20" {
		t.Fatalf("expected 2024-03-20, got %s", got)
	}
	if !view.Weeks[0][6].IsFriday() || !view.Weeks[0][6].IsOff() {
		t.Fatalf("last column should be Friday")
	}
	last := view.Weeks[4][6]
	if last.Date != (jalali.Date{Year: 1403, Month: 1, Day: 31}) {
		t.Fatalf("unexpected last cell %+v", last)
	}
	for _, week := range view.Weeks {
		if len(week) != 7 {
			t.Fatalf("week should have 7 days, got %d", len(week))
		}
	}
}

func TestMonthFlagsToday(t *testing.T) {
	svc := newTestService()
	view, err := svc.Month(1403, 5)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	found := 0
	for _, week := range view.Weeks {
		for _, day := range week {
			if day.IsToday {
				found++
				if day.Date.Day != 15 || day.Weekday != time.Monday {
					t.Fatalf("expected IsToday on Monday the 15th, got %+v", day)
				}
			}
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly one current day, got %d", found)
	}
}

func TestEsfandLength(t *testing.T) {
	svc := newTestService()
	for _, tc := range []struct{ year, days int }{{1403, 30}, {1402, 29}} {
		view, err := svc.Month(tc.year, 12)
		if err != nil {
			t.Fatalf("Month returned error: %v", err)
		}
		count := 0
		for _, week := range view.Weeks {
			for _, day := range week {
				if day.InMonth {
					count++
				}
			}
		}
		if count != tc.days {
			t.Fatalf("Esfand %d: expected %d days, got %d", tc.year, tc.days, count)
		}
	}
}

func TestYearLoadsAllMonths(t *testing.T) {
	svc := newTestService()
	views, err := svc.Year(1403)
	if err != nil {
		t.Fatalf("Year returned error: %v", err)
	}
	if len(views) != 12 {
		t.Fatalf("expected 12 months, got %d", len(views))
	}
}

func TestInvalidRequests(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Month(1403, 13); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := svc.Month(MaxSupportedYear+1, 1); err != ErrYearOutOfRange {
		t.Fatalf("expected ErrYearOutOfRange, got %v", err)
	}
	if _, err := svc.Year(MinSupportedYear - 1); err != ErrYearOutOfRange {
		t.Fatalf("expected ErrYearOutOfRange, got %v", err)
	}
}

func TestFirstSupportedMonthPadsWithoutDates(t *testing.T) {
	svc := newTestService()
	view, err := svc.Month(MinSupportedYear, 1)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	// 1 Farvardin -61 is a Thursday; the five cells before it precede the table.
	for i := 0; i < 5; i++ {
		if d := view.Weeks[0][i]; d.InMonth || d.Date != (jalali.Date{}) || d.Gregorian.IsZero() {
			t.Fatalf("cell %d: unexpected padding day %+v", i, d)
		}
	}
	if d := view.Weeks[0][5]; d.Date != (jalali.Date{Year: MinSupportedYear, Month: 1, Day: 1}) || d.Weekday != time.Thursday {
		t.Fatalf("unexpected first day %+v", d)
	}
}

func TestHolidaysAndSecondaryLabel(t *testing.T) {
	data := holidays.Fixed(1403)
	svc := newTestService(WithHolidays(data))
	if !svc.HasHolidayData() {
		t.Fatalf("expected holiday data")
	}
	view, err := svc.Month(1403, 1)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	nowruz := view.Weeks[0][4]
	if nowruz.HolidayInfo == nil || nowruz.HolidayInfo.Name != "Nowruz" || !nowruz.IsOff() {
		t.Fatalf("expected Nowruz holiday, got %+v", nowruz.HolidayInfo)
	}
	if nowruz.SecondaryLabel() != "20" {
		t.Fatalf("expected Gregorian day 20, got %q", nowruz.SecondaryLabel())
	}
	// 13 Farvardin 1403 is 1 April 2024.
	for _, week := range view.Weeks {
		for _, day := range week {
			if day.Date == (jalali.Date{Year: 1403, Month: 1, Day: 13}) && day.SecondaryLabel() != "Apr" {
				t.Fatalf("expected month abbreviation, got %q", day.SecondaryLabel())
			}
		}
	}
	if newTestService().HasHolidayData() {
		t.Fatalf("expected no holiday data")
	}
}

func TestPersianHeaders(t *testing.T) {
	fa, err := months.New("fa")
	if err != nil {
		t.Fatalf("months.New: %v", err)
	}
	view, err := newTestService(WithNamer(fa)).Month(1403, 5)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	if view.Title != "مرداد 1403" {
		t.Fatalf("unexpected title %q", view.Title)
	}
	if view.Weekdays[0] != "ش" || view.Weekdays[6] != "ج" {
		t.Fatalf("unexpected weekday headers %v", view.Weekdays)
	}
}

func TestBoundsMarkSelectableDays(t *testing.T) {
	calc, err := bounds.New(bounds.Defaults(),
		bounds.WithNow(func() time.Time { return fixedNow }),
		bounds.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("bounds.New: %v", err)
	}
	view, err := newTestService(WithBounds(calc)).Month(1403, 5)
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	for _, week := range view.Weeks {
		for _, day := range week {
			if !day.InMonth {
				continue
			}
			if want := day.Date.Day <= 15; day.Selectable != want {
				t.Fatalf("day %s selectable=%v want %v", day.Date, day.Selectable, want)
			}
		}
	}
}

// The grid draws the real Esfand of the break table while the calculator
// sizes Esfand with the 33-year cycle. The rules differ for 1176 and 1177.
func TestEsfandGridFollowsBreakTable(t *testing.T) {
	calc, err := bounds.New(bounds.Config{YearRange: &bounds.YearRange{Low: 1100, High: 1403}},
		bounds.WithNow(func() time.Time { return fixedNow }),
		bounds.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("bounds.New: %v", err)
	}
	svc := newTestService(WithBounds(calc))

	inMonth := func(year int) []Day {
		view, err := svc.Month(year, 12)
		if err != nil {
			t.Fatalf("Month(%d, 12) returned error: %v", year, err)
		}
		var days []Day
		for _, week := range view.Weeks {
			for _, day := range week {
				if day.InMonth {
					days = append(days, day)
				}
			}
		}
		return days
	}

	// 1176 is leap in the table only: 30 Esfand is drawn but not selectable.
	days := inMonth(1176)
	if len(days) != 30 {
		t.Fatalf("Esfand 1176 should have 30 days, got %d", len(days))
	}
	if days[29].Selectable || !days[28].Selectable {
		t.Fatalf("only 30 Esfand 1176 should be unselectable")
	}
	if got := bounds.MonthLength(12, 1176); got != 29 {
		t.Fatalf("MonthLength(12, 1176)=%d want 29", got)
	}

	// 1177 is leap in the cycle only: the calculator offers a day the grid
	// does not draw.
	days = inMonth(1177)
	if len(days) != 29 {
		t.Fatalf("Esfand 1177 should have 29 days, got %d", len(days))
	}
	if got := len(calc.SelectableDayRange(12, 1177)); got != 30 {
		t.Fatalf("SelectableDayRange(12, 1177) has %d days want 30", got)
	}
	if err := jalali.Validate(jalali.Date{Year: 1177, Month: 12, Day: 30}); err == nil {
		t.Fatalf("30 Esfand 1177 should not exist in the break table")
	}
}

func TestRequestNavigation(t *testing.T) {
	r := Request{Year: 1403, Month: 12}.NextMonth()
	if r.Year != 1404 || r.Month != 1 {
		t.Fatalf("unexpected %+v", r)
	}
	r = r.PreviousMonth().PreviousYear()
	if r.Year != 1402 || r.Month != 12 {
		t.Fatalf("unexpected %+v", r)
	}
	if r = (Request{Year: 1400, Month: -1}).Normalize(); r.Year != 1399 || r.Month != 11 {
		t.Fatalf("unexpected %+v", r)
	}
}

func TestRequestClamp(t *testing.T) {
	calc, err := bounds.New(bounds.Defaults(),
		bounds.WithNow(func() time.Time { return fixedNow }),
		bounds.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("bounds.New: %v", err)
	}
	tests := []struct {
		in, want Request
	}{
		{Request{Year: 1403, Month: 9}, Request{Year: 1403, Month: 5}},
		{Request{Year: 1500, Month: 1}, Request{Year: 1403, Month: 1}},
		{Request{Year: 1100, Month: 7}, Request{Year: 1203, Month: 7}},
		{Request{Year: 1402, Month: 12}, Request{Year: 1402, Month: 12}},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(calc); got != tt.want {
			t.Fatalf("Clamp(%+v)=%+v want %+v", tt.in, got, tt.want)
		}
	}
	if got := (Request{Year: 1500, Month: 13}).Clamp(nil); got != (Request{Year: 1501, Month: 1}) {
		t.Fatalf("nil calculator should only normalize, got %+v", got)
	}
}
