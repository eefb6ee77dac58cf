package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/months"
)

var stamp = time.Date(2024, 8, 5, 10, 0, 0, 0, time.UTC)

func newEncoder(t *testing.T) *Encoder {
	t.Helper()
	namer, err := months.New("en")
	require.NoError(t, err)
	return &Encoder{Now: func() time.Time { return stamp }, Namer: namer}
}

func decode(t *testing.T, raw []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(raw)).Decode()
	require.NoError(t, err)
	return cal
}

func TestHolidaysWritesOneEventPerEntry(t *testing.T) {
	data := holidays.Fixed(1403)
	holidays.Merge(data, holidays.Data{1403: {
		"02-15": {Holiday: false, Name: "Ferdowsi Day"},
	}})

	var buf bytes.Buffer
	require.NoError(t, newEncoder(t).Holidays(&buf, 1403, data))

	out := buf.String()
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240320")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240321")

	cal := decode(t, buf.Bytes())
	events := cal.Events()
	require.Len(t, events, 11)

	first := events[0]
	summary, err := first.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Nowruz", summary)
	desc, err := first.Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "1 Farvardin 1403", desc)

	start, err := first.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), start)

	// Ferdowsi Day sorts after the Farvardin entries and is not a day off.
	var observance *ical.Event
	for i := range events {
		if s, _ := events[i].Props.Text(ical.PropSummary); s == "Ferdowsi Day" {
			observance = &events[i]
		}
	}
	require.NotNil(t, observance)
	category, err := observance.Props.Text(ical.PropCategories)
	require.NoError(t, err)
	assert.Equal(t, "Observance", category)
	transp, err := observance.Props.Text(ical.PropTransparency)
	require.NoError(t, err)
	assert.Equal(t, "TRANSPARENT", transp)

	last := events[len(events)-1]
	lastStart, err := last.DateTimeStart(time.UTC)
	require.NoError(t, err)
	// 29 Esfand 1403 is 2025-03-19.
	assert.Equal(t, time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC), lastStart)
}

func TestHolidaysUIDsAreStable(t *testing.T) {
	data := holidays.Fixed(1403)
	enc := newEncoder(t)

	var a, b bytes.Buffer
	require.NoError(t, enc.Holidays(&a, 1403, data))
	require.NoError(t, enc.Holidays(&b, 1403, data))
	assert.Equal(t, a.String(), b.String())

	seen := map[string]bool{}
	for _, ev := range decode(t, a.Bytes()).Events() {
		uid, err := ev.Props.Text(ical.PropUID)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(uid, "@jcal"))
		assert.False(t, seen[uid], "duplicate uid %s", uid)
		seen[uid] = true
	}
}

func TestHolidaysEmptyYear(t *testing.T) {
	var buf bytes.Buffer
	err := newEncoder(t).Holidays(&buf, 1390, holidays.Fixed(1403))
	assert.True(t, errors.Is(err, ErrNoEvents))
	assert.Zero(t, buf.Len())
}

func TestHolidaysRejectsImpossibleDates(t *testing.T) {
	data := holidays.Data{1402: {"12-30": {Holiday: true, Name: "Nowhere"}}}
	err := newEncoder(t).Holidays(&bytes.Buffer{}, 1402, data)
	assert.Error(t, err)
}

func TestHolidaysDefaultsToEnglish(t *testing.T) {
	var buf bytes.Buffer
	enc := &Encoder{Now: func() time.Time { return stamp }}
	require.NoError(t, enc.Holidays(&buf, 1403, holidays.Fixed(1403)))
	assert.Contains(t, buf.String(), "Farvardin")
}

func TestMonthSpansGregorianDates(t *testing.T) {
	svc := calendar.NewService(
		calendar.WithNow(func() time.Time { return stamp }),
		calendar.WithLocation(time.UTC),
	)
	view, err := svc.Month(1403, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, newEncoder(t).Month(&buf, view))

	out := buf.String()
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240320")
	// 31 Farvardin is 2024-04-19; DTEND is exclusive.
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240420")

	events := decode(t, buf.Bytes()).Events()
	require.Len(t, events, 1)
	summary, err := events[0].Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Farvardin 1403", summary)
	desc, err := events[0].Props.Text(ical.PropDescription)
	require.NoError(t, err)
	assert.Equal(t, "1403-01-01 to 1403-01-31", desc)
}

func TestMonthWithoutDays(t *testing.T) {
	err := newEncoder(t).Month(&bytes.Buffer{}, calendar.MonthView{Year: 1403, Month: 1})
	assert.True(t, errors.Is(err, ErrNoEvents))
}
