package jalali

// leapResidues are the positions of the leap years in the 33-year cycle.
var leapResidues = [...]int{1, 5, 9, 13, 17, 22, 26, 30}

// IsLeapYear is the fast 33-year-cycle leap test used for month lengths.
// It is not identical to IsLeapYearExact for every year; both are kept.
func IsLeapYear(year int) bool {
	r := year % 33
	for _, v := range leapResidues {
		if r == v {
			return true
		}
	}
	return false
}
