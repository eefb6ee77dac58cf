package jalali

import (
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGregorianToJalaliKnownDates(t *testing.T) {
	tests := []struct {
		name       string
		gy, gm, gd int
		want       Date
	}{
		{"nowruz 1403", 2024, 3, 20, Date{1403, 1, 1}},
		{"nowruz 1404", 2025, 3, 21, Date{1404, 1, 1}},
		{"last day of 1402", 2024, 3, 19, Date{1402, 12, 29}},
		{"leap day of 1403", 2025, 3, 20, Date{1403, 12, 30}},
		{"22 bahman 1357", 1979, 2, 11, Date{1357, 11, 22}},
		{"epoch", 622, 3, 22, Date{1, 1, 1}},
		{"gregorian non-leap century", 2100, 2, 28, Date{1478, 12, 10}},
		{"day after non-leap century feb", 2100, 3, 1, Date{1478, 12, 11}},
		{"first supported day", 560, 3, 20, Date{-61, 1, 1}},
		{"last supported day", 3799, 3, 19, Date{3177, 12, 29}},
		{"early 3799", 3799, 1, 1, Date{3177, 10, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GregorianToJalali(tt.gy, tt.gm, tt.gd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJalaliToGregorianKnownDates(t *testing.T) {
	tests := []struct {
		in   Date
		want Date
	}{
		{Date{1403, 1, 1}, Date{2024, 3, 20}},
		{Date{1403, 5, 15}, Date{2024, 8, 5}},
		{Date{1403, 12, 30}, Date{2025, 3, 20}},
		{Date{1404, 1, 1}, Date{2025, 3, 21}},
		{Date{1404, 12, 29}, Date{2026, 3, 20}},
		{Date{1405, 1, 1}, Date{2026, 3, 21}},
		{Date{1, 1, 1}, Date{622, 3, 22}},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got, err := JalaliToGregorian(tt.in.Year, tt.in.Month, tt.in.Day)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEveryDayInTableRoundTrips(t *testing.T) {
	prev, err := JDNToJalali(FirstJDN)
	require.NoError(t, err)
	require.Equal(t, Date{FirstYear, 1, 1}, prev)

	for jdn := FirstJDN + 1; jdn <= LastJDN; jdn++ {
		d, err := JDNToJalali(jdn)
		if err != nil {
			t.Fatalf("JDNToJalali(%d): %v", jdn, err)
		}
		back, err := JalaliToJDN(d.Year, d.Month, d.Day)
		if err != nil || back != jdn {
			t.Fatalf("JalaliToJDN(%s)=%d, %v want %d", d, back, err, jdn)
		}
		if !follows(prev, d) {
			t.Fatalf("%s does not follow %s (jdn %d)", d, prev, jdn)
		}
		prev = d
	}
	assert.Equal(t, Date{LastYear, 12, 29}, prev)
}

// follows reports whether next is the day after prev in the Jalali calendar.
func follows(prev, next Date) bool {
	switch {
	case next.Year == prev.Year && next.Month == prev.Month:
		return next.Day == prev.Day+1
	case next.Day != 1:
		return false
	case next.Year == prev.Year:
		return next.Month == prev.Month+1
	default:
		return next.Year == prev.Year+1 && next.Month == 1 && prev.Month == 12
	}
}

func TestGregorianRoundTrip(t *testing.T) {
	start := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(3001, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		y, m, day := d.Date()
		j, err := GregorianToJalali(y, int(m), day)
		if err != nil {
			t.Fatalf("GregorianToJalali(%s): %v", d.Format("2006-01-02"), err)
		}
		g, err := JalaliToGregorian(j.Year, j.Month, j.Day)
		if err != nil {
			t.Fatalf("JalaliToGregorian(%s): %v", j, err)
		}
		if g != (Date{y, int(m), day}) {
			t.Fatalf("%s -> %s -> %s", d.Format("2006-01-02"), j, g)
		}
	}
}

func TestJalaliRoundTrip(t *testing.T) {
	for y := FirstYear; y <= LastYear; y++ {
		for m := 1; m <= 12; m++ {
			n, err := DaysInMonth(y, m)
			require.NoError(t, err)
			for d := 1; d <= n; d++ {
				g, err := JalaliToGregorian(y, m, d)
				if err != nil {
					t.Fatalf("JalaliToGregorian(%d-%d-%d): %v", y, m, d, err)
				}
				j, err := GregorianToJalali(g.Year, g.Month, g.Day)
				if err != nil {
					t.Fatalf("GregorianToJalali(%s): %v", g, err)
				}
				if j != (Date{y, m, d}) {
					t.Fatalf("%d-%d-%d -> %s -> %s", y, m, d, g, j)
				}
			}
		}
	}
}

func TestConversionOutsideTable(t *testing.T) {
	_, err := GregorianToJalali(560, 3, 19)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = GregorianToJalali(3799, 3, 20)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = JalaliToGregorian(LastYear+1, 1, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = JalaliToGregorian(FirstYear-1, 12, 29)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestConversionDoesNotValidate(t *testing.T) {
	// Impossible month and day values still produce a date.
	g, err := JalaliToGregorian(1403, 13, 1)
	require.NoError(t, err)
	assert.Equal(t, Date{2025, 3, 21}, g)

	j, err := GregorianToJalali(2024, 2, 30)
	require.NoError(t, err)
	assert.Equal(t, Date{1402, 12, 11}, j)
}

func TestConcurrentConversionsAreIndependent(t *testing.T) {
	// Conversions return values; no state is shared between callers.
	type result struct {
		in  Date
		out Date
	}
	inputs := make([]Date, 0, 400)
	for y := 1300; y < 1500; y++ {
		inputs = append(inputs, Date{y, 1, 1}, Date{y, 7, 15})
	}
	want := make([]Date, len(inputs))
	for i, in := range inputs {
		g, err := JalaliToGregorian(in.Year, in.Month, in.Day)
		require.NoError(t, err)
		want[i] = g
	}

	results := make([]result, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in Date) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				g, err := JalaliToGregorian(in.Year, in.Month, in.Day)
				if err != nil {
					return
				}
				j, err := GregorianToJalali(g.Year, g.Month, g.Day)
				if err != nil {
					return
				}
				results[i] = result{in: j, out: g}
			}
		}(i, in)
	}
	wg.Wait()

	for i, in := range inputs {
		assert.Equal(t, in, results[i].in)
		assert.Equal(t, want[i], results[i].out)
	}
}

func TestFromTimeUsesLocation(t *testing.T) {
	tehran, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)

	instant := time.Date(2024, 3, 19, 22, 0, 0, 0, time.UTC)

	d, err := FromTime(instant, tehran)
	require.NoError(t, err)
	assert.Equal(t, Date{1403, 1, 1}, d)

	d, err = FromTime(instant, nil)
	require.NoError(t, err)
	assert.Equal(t, Date{1402, 12, 29}, d)
}

func TestToTime(t *testing.T) {
	got, err := ToTime(Date{1403, 1, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), got)
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		d    Date
		want time.Weekday
	}{
		{Date{1403, 1, 1}, time.Wednesday},
		{Date{1357, 11, 22}, time.Sunday},
		{Date{1404, 1, 1}, time.Friday},
	}
	for _, tt := range tests {
		got, err := Weekday(tt.d)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.d.String())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		d       Date
		wantErr error
	}{
		{Date{1403, 12, 30}, nil},
		{Date{1403, 6, 31}, nil},
		{Date{1402, 12, 30}, ErrInvalidDate},
		{Date{1403, 7, 31}, ErrInvalidDate},
		{Date{1403, 13, 1}, ErrInvalidDate},
		{Date{1403, 1, 0}, ErrInvalidDate},
		{Date{3178, 1, 1}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			err := Validate(tt.d)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "1403-01-09", Date{1403, 1, 9}.String())
}
