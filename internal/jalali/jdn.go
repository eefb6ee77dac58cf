// Package jalali converts dates between the Jalali (Persian) and Gregorian
// calendars through Julian Day Numbers.
//
// The arithmetic follows K.M. Borkowski's modification of D.A. Hatcher's
// algorithm (Q.Jl.R.Astron.Soc. 25 (1984), 53-55; Post.Astron. 25 (1987),
// 275-279). Every function in this package is pure and safe for concurrent
// use.
package jalali

// Kind selects the calendar a JDN is encoded from or decoded to.
type Kind int

const (
	// Gregorian is the proleptic Gregorian calendar.
	Gregorian Kind = iota
	// Julian is the proleptic Julian calendar.
	Julian
)

func (k Kind) String() string {
	switch k {
	case Gregorian:
		return "gregorian"
	case Julian:
		return "julian"
	default:
		return "unknown"
	}
}

// ToJDN returns the Julian Day Number of the given date. The integer value
// corresponds to noon UTC of that date.
//
// The formula is valid from 1 March -100100 of either calendar up to a few
// million years ahead and does not check that month and day are in range.
func ToJDN(year, month, day int, kind Kind) int {
	jdn := (year+(month-8)/6+100100)*1461/4 +
		(153*((month+9)%12)+2)/5 +
		day - 34840408
	if kind == Gregorian {
		jdn = jdn - (year+100100+(month-8)/6)/100*3/4 + 752
	}
	return jdn
}

// FromJDN is the inverse of ToJDN. It is valid from JDN -34839655 (year
// -100100 of either calendar) onwards.
func FromJDN(jdn int, kind Kind) (year, month, day int) {
	j := 4*jdn + 139361631
	if kind == Gregorian {
		j = j + (4*jdn+183187720)/146097*3/4*4 - 3908
	}
	i := (j%1461)/4*5 + 308
	day = (i%153)/5 + 1
	month = (i/153)%12 + 1
	year = j/1461 - 100100 + (8-month)/6
	return year, month, day
}
