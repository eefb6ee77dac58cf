package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/months"
)

// DateResponse describes one day in both calendars.
type DateResponse struct {
	Jalali    string `json:"jalali"`
	Gregorian string `json:"gregorian"`
	Weekday   string `json:"weekday"`
	MonthName string `json:"month_name"`
	Leap      bool   `json:"leap"`
}

// LeapResponse reports both leap rules for a Jalali year.
type LeapResponse struct {
	Year int  `json:"year"`
	Leap bool `json:"leap"`
	// LeapExact is absent for years outside the break table.
	LeapExact  *bool `json:"leap_exact,omitempty"`
	EsfandDays int   `json:"esfand_days"`
}

// BoundsResponse is the maximum selectable date and the year range.
type BoundsResponse struct {
	Today         string                 `json:"today"`
	FutureEnabled bool                   `json:"future_enabled"`
	Max           bounds.SelectionBounds `json:"max"`
	Years         bounds.YearRange       `json:"years"`
}

// YearBoundsResponse lists the selectable months of a year.
type YearBoundsResponse struct {
	Year       int   `json:"year"`
	Selectable bool  `json:"selectable"`
	Months     []int `json:"months"`
}

// MonthBoundsResponse lists the selectable days of a month.
type MonthBoundsResponse struct {
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	MonthLength int   `json:"month_length"`
	Days        []int `json:"days"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var datePattern = regexp.MustCompile(`^(-?\d{1,4})-(\d{1,2})-(\d{1,2})$`)

var errBadDate = errors.New("date must look like YYYY-MM-DD")

func parseDate(s string) (jalali.Date, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return jalali.Date{}, fmt.Errorf("%w, got %q", errBadDate, s)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return jalali.Date{Year: y, Month: mo, Day: d}, nil
}

func validGregorian(d jalali.Date) bool {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	y, m, day := t.Date()
	return y == d.Year && int(m) == d.Month && day == d.Day
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps engine errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jalali.ErrOutOfRange),
		errors.Is(err, jalali.ErrInvalidDate),
		errors.Is(err, months.ErrOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errBadDate), errors.Is(err, months.ErrUnknownLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) namer(r *http.Request) (*months.Namer, error) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.lang
	}
	return months.New(lang)
}

func (s *Server) describe(r *http.Request, j, g jalali.Date) (DateResponse, error) {
	n, err := s.namer(r)
	if err != nil {
		return DateResponse{}, err
	}
	name, err := n.Name(j.Month)
	if err != nil {
		return DateResponse{}, err
	}
	wd, err := jalali.Weekday(j)
	if err != nil {
		return DateResponse{}, err
	}
	leap, err := jalali.IsLeapYearExact(j.Year)
	if err != nil {
		return DateResponse{}, err
	}
	return DateResponse{
		Jalali:    j.String(),
		Gregorian: g.String(),
		Weekday:   wd.String(),
		MonthName: name,
		Leap:      leap,
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	today, err := jalali.FromTime(s.now(), s.loc)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"today":  today.String(),
	})
}

func (s *Server) handleToJalali(w http.ResponseWriter, r *http.Request) {
	g, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !validGregorian(g) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s is not a Gregorian date", g))
		return
	}
	j, err := jalali.GregorianToJalali(g.Year, g.Month, g.Day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	conversionsTotal.WithLabelValues("to_jalali").Inc()

	resp, err := s.describe(r, j, g)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToGregorian(w http.ResponseWriter, r *http.Request) {
	j, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := jalali.Validate(j); err != nil {
		s.writeDomainError(w, err)
		return
	}
	g, err := jalali.JalaliToGregorian(j.Year, j.Month, j.Day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	conversionsTotal.WithLabelValues("to_gregorian").Inc()

	resp, err := s.describe(r, j, g)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	loc := s.loc
	if tz := r.URL.Query().Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown time zone %q", tz))
			return
		}
		loc = l
	}
	now := s.now().In(loc)
	j, err := jalali.FromTime(now, nil)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	y, m, d := now.Date()
	resp, err := s.describe(r, j, jalali.Date{Year: y, Month: int(m), Day: d})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeap(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	resp := LeapResponse{
		Year:       year,
		Leap:       jalali.IsLeapYear(year),
		EsfandDays: bounds.MonthLength(12, year),
	}
	if exact, err := jalali.IsLeapYearExact(year); err == nil {
		resp.LeapExact = &exact
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonthName(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer")
		return
	}
	n, err := s.namer(r)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	name, err := n.Name(month)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"name":  name,
		"lang":  n.Language(),
	})
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	calc, err := s.calculator()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoundsResponse{
		Today:         calc.Today().String(),
		FutureEnabled: calc.FutureEnabled(),
		Max:           calc.Bounds(),
		Years:         calc.SelectableYearRange(),
	})
}

func (s *Server) handleYearBounds(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	calc, err := s.calculator()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, YearBoundsResponse{
		Year:       year,
		Selectable: calc.SelectableYearRange().Contains(year),
		Months:     calc.SelectableMonthRange(year),
	})
}

func (s *Server) handleMonthBounds(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer")
		return
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}
	calc, err := s.calculator()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MonthBoundsResponse{
		Year:        year,
		Month:       month,
		MonthLength: bounds.MonthLength(month, year),
		Days:        calc.SelectableDayRange(month, year),
	})
}
