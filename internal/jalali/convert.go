package jalali

import (
	"errors"
	"fmt"
	"time"
)

// Date is a plain year/month/day triple with 1-based month and day. The
// calendar it belongs to is implied by the function that produced it.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ErrInvalidDate is returned by Validate for impossible Jalali dates.
var ErrInvalidDate = errors.New("jalali: invalid date")

// Julian Day Numbers of 1 Farvardin -61 and 29 Esfand 3177 (a common
// year), i.e. Gregorian 560-03-20 and 3799-03-19.
var (
	FirstJDN = mustJalaliToJDN(FirstYear, 1, 1)
	LastJDN  = mustJalaliToJDN(LastYear, 12, 29)
)

func mustJalaliToJDN(jy, jm, jd int) int {
	n, err := JalaliToJDN(jy, jm, jd)
	if err != nil {
		panic(err)
	}
	return n
}

// JalaliToJDN returns the Julian Day Number of a Jalali date. Month and day
// are not validated.
func JalaliToJDN(jy, jm, jd int) (int, error) {
	info, err := ComputeYearInfo(jy)
	if err != nil {
		return 0, err
	}
	return ToJDN(info.GregorianYear, 3, info.March, Gregorian) +
		(jm-1)*31 - jm/7*(jm-7) + jd - 1, nil
}

// JDNToJalali returns the Jalali date of a Julian Day Number.
func JDNToJalali(jdn int) (Date, error) {
	if jdn < FirstJDN || jdn > LastJDN {
		return Date{}, fmt.Errorf("%w: day number %d not in [%d, %d]", ErrOutOfRange, jdn, FirstJDN, LastJDN)
	}

	gy, _, _ := FromJDN(jdn, Gregorian)
	jy := gy - 621
	if jy > LastYear {
		// Early 3799 still belongs to 3177, whose anchor is a year back.
		jy = LastYear
	}
	info, err := ComputeYearInfo(jy)
	if err != nil {
		return Date{}, err
	}

	k := jdn - ToJDN(info.GregorianYear, 3, info.March, Gregorian)
	if k >= 0 {
		if k <= 185 {
			return Date{Year: jy, Month: 1 + k/31, Day: k%31 + 1}, nil
		}
		k -= 186
	} else {
		jy--
		k += 179
		if info.Leap == 1 {
			k++
		}
	}
	return Date{Year: jy, Month: 7 + k/30, Day: k%30 + 1}, nil
}

// GregorianToJalali converts a Gregorian date to the Jalali calendar. Month
// and day are not validated; only dates outside the break table fail.
func GregorianToJalali(gy, gm, gd int) (Date, error) {
	return JDNToJalali(ToJDN(gy, gm, gd, Gregorian))
}

// JalaliToGregorian converts a Jalali date to the Gregorian calendar. Month
// and day are not validated; only years outside the break table fail.
func JalaliToGregorian(jy, jm, jd int) (Date, error) {
	jdn, err := JalaliToJDN(jy, jm, jd)
	if err != nil {
		return Date{}, err
	}
	y, m, d := FromJDN(jdn, Gregorian)
	return Date{Year: y, Month: m, Day: d}, nil
}

// FromTime converts the calendar date of t, as seen in loc, to Jalali. A nil
// loc keeps t's own location. The time of day is ignored.
func FromTime(t time.Time, loc *time.Location) (Date, error) {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return GregorianToJalali(y, int(m), d)
}

// ToTime returns midnight of the Jalali date d in loc (UTC when nil).
func ToTime(d Date, loc *time.Location) (time.Time, error) {
	g, err := JalaliToGregorian(d.Year, d.Month, d.Day)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, loc), nil
}

// Weekday returns the day of the week of a Jalali date.
func Weekday(d Date) (time.Weekday, error) {
	jdn, err := JalaliToJDN(d.Year, d.Month, d.Day)
	if err != nil {
		return 0, err
	}
	return time.Weekday((jdn + 1) % 7), nil
}

// DaysInMonth returns the length of a Jalali month using the break table to
// decide whether Esfand has 30 days.
func DaysInMonth(jy, jm int) (int, error) {
	info, err := ComputeYearInfo(jy)
	if err != nil {
		return 0, err
	}
	switch {
	case jm < 1 || jm > 12:
		return 0, fmt.Errorf("%w: month %d", ErrInvalidDate, jm)
	case jm <= 6:
		return 31, nil
	case jm <= 11:
		return 30, nil
	case info.IsLeap():
		return 30, nil
	default:
		return 29, nil
	}
}

// Validate checks that d is a real Jalali date inside the break table.
// Conversions never call it.
func Validate(d Date) error {
	n, err := DaysInMonth(d.Year, d.Month)
	if err != nil {
		return err
	}
	if d.Day < 1 || d.Day > n {
		return fmt.Errorf("%w: %s has no day %d", ErrInvalidDate, d, d.Day)
	}
	return nil
}
