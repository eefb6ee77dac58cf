package jalali

import (
	"errors"
	"fmt"
)

// breaks holds the Jalali years at which the spacing of leap-year cycles
// changes. Consecutive entries bound an interval with its own jump size.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// Supported Jalali year range, as covered by the break table.
const (
	FirstYear = -61
	LastYear  = 3177
)

// ErrOutOfRange reports a year or day number the break table does not cover.
var ErrOutOfRange = errors.New("jalali: outside the supported range")

// YearInfo describes where a Jalali year starts and whether it is leap.
type YearInfo struct {
	// GregorianYear is the Gregorian year in which the Jalali year begins.
	GregorianYear int
	// March is the day of Gregorian March on which 1 Farvardin falls.
	March int
	// Leap is the position of the year in its 4-year sub-cycle; 0 means
	// the year has 366 days. A value of 1 means the year before was leap.
	Leap int
}

// IsLeap reports whether the year has 366 days.
func (i YearInfo) IsLeap() bool {
	return i.Leap == 0
}

// ComputeYearInfo scans the break table for the interval holding jy and
// derives the start of the year and its leap status.
func ComputeYearInfo(jy int) (YearInfo, error) {
	if jy < breaks[0] || jy >= breaks[len(breaks)-1] {
		return YearInfo{}, fmt.Errorf("%w: year %d not in [%d, %d]", ErrOutOfRange, jy, FirstYear, LastYear)
	}

	gy := jy + 621
	leapJ := -14
	jp := breaks[0]
	jump := 0
	for _, jm := range breaks[1:] {
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + (jump%33)/4
		jp = jm
	}

	n := jy - jp
	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}
	leapG := gy/4 - (gy/100+1)*3/4 - 150

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap := ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}

	return YearInfo{
		GregorianYear: gy,
		March:         20 + leapJ - leapG,
		Leap:          leap,
	}, nil
}

// IsLeapYearExact reports whether jy has 366 days according to the break
// table. Unlike IsLeapYear it follows the historical irregularities of the
// calendar, and it fails for years outside the table.
func IsLeapYearExact(jy int) (bool, error) {
	info, err := ComputeYearInfo(jy)
	if err != nil {
		return false, err
	}
	return info.IsLeap(), nil
}
