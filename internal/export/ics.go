// Package export writes Jalali calendar data as iCalendar (RFC 5545) feeds.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/months"
)

const productID = "-//jcal//Jalali Calendar//EN"

// ErrNoEvents is returned when there is nothing to export; iCalendar
// requires at least one component.
var ErrNoEvents = errors.New("export: no events to write")

// uidSpace namespaces the name-based UUIDs so repeated exports keep the
// same UIDs.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/lululau/jcal"))

// Encoder builds iCalendar feeds.
type Encoder struct {
	// Now stamps DTSTAMP; it defaults to time.Now.
	Now func() time.Time
	// Namer labels dates in descriptions; English when nil.
	Namer *months.Namer
}

func (e *Encoder) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Encoder) namer() (*months.Namer, error) {
	if e.Namer != nil {
		return e.Namer, nil
	}
	return months.New(months.DefaultLanguage)
}

func newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText("X-WR-CALNAME", name)
	return cal
}

func allDayEvent(uid, summary string, start, end time.Time, stamp time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetText(ical.PropSummary, summary)

	dtStart := ical.NewProp(ical.PropDateTimeStart)
	dtStart.SetDate(start)
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(ical.PropDateTimeEnd)
	dtEnd.SetDate(end)
	event.Props.Set(dtEnd)
	return event
}

func uid(parts ...any) string {
	return uuid.NewSHA1(uidSpace, []byte(fmt.Sprint(parts...))).String() + "@jcal"
}

func encode(w io.Writer, cal *ical.Calendar) error {
	if len(cal.Children) == 0 {
		return ErrNoEvents
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

// Holidays writes one all-day event per entry of a Jalali year.
func (e *Encoder) Holidays(w io.Writer, year int, data holidays.Data) error {
	namer, err := e.namer()
	if err != nil {
		return err
	}
	cal := newCalendar(namer.YearTitle(year))
	stamp := e.now()

	for _, day := range data.Year(year) {
		if err := jalali.Validate(day.Date); err != nil {
			return fmt.Errorf("holiday %q: %w", day.Name, err)
		}
		start, err := jalali.ToTime(day.Date, time.UTC)
		if err != nil {
			return err
		}
		monthName, err := namer.Name(day.Date.Month)
		if err != nil {
			return err
		}

		event := allDayEvent(uid("holiday", day.Date, day.Name), day.Name, start, start.AddDate(0, 0, 1), stamp)
		event.Props.SetText(ical.PropDescription, fmt.Sprintf("%d %s %d", day.Date.Day, monthName, day.Date.Year))
		category := "Observance"
		if day.IsHoliday {
			category = "Holiday"
		} else {
			event.Props.SetText(ical.PropTransparency, "TRANSPARENT")
		}
		event.Props.SetText(ical.PropCategories, category)
		cal.Children = append(cal.Children, event.Component)
	}
	return encode(w, cal)
}

// Month writes a Jalali month as a single all-day event spanning its
// Gregorian dates.
func (e *Encoder) Month(w io.Writer, view calendar.MonthView) error {
	var first, last *calendar.Day
	for wi := range view.Weeks {
		for di := range view.Weeks[wi] {
			d := &view.Weeks[wi][di]
			if !d.InMonth {
				continue
			}
			if first == nil {
				first = d
			}
			last = d
		}
	}
	if first == nil {
		return ErrNoEvents
	}

	start := dateOnly(first.Gregorian)
	end := dateOnly(last.Gregorian).AddDate(0, 0, 1)

	cal := newCalendar(view.Title)
	event := allDayEvent(uid("month", view.Year, view.Month), view.Title, start, end, e.now())
	event.Props.SetText(ical.PropDescription, fmt.Sprintf("%s to %s", first.Date, last.Date))
	cal.Children = append(cal.Children, event.Component)
	return encode(w, cal)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
