package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/jalali"
)

const staleHolidayHint = "Holiday data is missing or older than 6 months; run `jcal holidays update` to refresh it."

// PlainOptions controls how the non-interactive renderer behaves.
type PlainOptions struct {
	Writer            io.Writer
	Service           *calendar.Service
	Request           calendar.Request
	Width             int
	HolidayCacheValid bool
}

// RunPlain prints the requested month or year once, followed by the legend,
// the holidays on screen with their Gregorian dates and the selectable span.
func RunPlain(opts PlainOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	svc := opts.Service
	if svc == nil {
		svc = calendar.NewService()
	}

	views, err := viewsFor(svc, opts.Request.Normalize())
	if err != nil {
		return err
	}
	blocks, err := BuildBlocks(views)
	if err != nil {
		return err
	}
	width := opts.Width
	if width == 0 {
		width = DetectWidth()
	}
	grid := Layout(blocks, width)
	if grid == "" {
		return nil
	}

	sections := []string{grid, ColorLegend()}
	if notes := HolidayNotes(views); len(notes) > 0 {
		sections = append(sections, strings.Join(notes, "\n"))
	}
	if note := SelectableNote(svc); note != "" {
		sections = append(sections, note)
	}
	if !opts.HolidayCacheValid {
		sections = append(sections, staleHolidayHint)
	}
	_, err = fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}

// HolidayNotes lists the holidays and observances inside views, one line
// each: Jalali date, Gregorian date and name.
func HolidayNotes(views []calendar.MonthView) []string {
	var notes []string
	for _, view := range views {
		for _, week := range view.Weeks {
			for _, day := range week {
				if !day.InMonth || day.HolidayInfo == nil {
					continue
				}
				name := day.HolidayInfo.Name
				if !day.HolidayInfo.IsHoliday {
					name += " (observance)"
				}
				notes = append(notes, fmt.Sprintf("%s  %s  %s", day.Date, day.Gregorian.Format("Mon 2 Jan 2006"), name))
			}
		}
	}
	return notes
}

// SelectableNote describes the span of dates the service's bounds allow, or
// returns "" when the service has none.
func SelectableNote(svc *calendar.Service) string {
	calc := svc.Bounds()
	if calc == nil {
		return ""
	}
	r := calc.SelectableYearRange()
	b := calc.Bounds()
	last := jalali.Date{Year: b.MaxYear, Month: b.MaxMonth, Day: calc.LastSelectableDay(b.MaxMonth, b.MaxYear)}
	return dim(fmt.Sprintf("Selectable: %d-01-01 to %s", r.Low, last))
}

func viewsFor(svc *calendar.Service, req calendar.Request) ([]calendar.MonthView, error) {
	if req.Mode == calendar.ModeYear {
		return svc.Year(req.Year)
	}
	view, err := svc.Month(req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	return []calendar.MonthView{view}, nil
}

func dim(s string) string {
	if noColorMode {
		return s
	}
	return dimStyle.Render(s)
}
