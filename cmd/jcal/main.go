// Command jcal is a Jalali (Persian solar) calendar for the terminal with a
// date conversion CLI and HTTP API.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/render"
	"github.com/lululau/jcal/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	cfgFile   string
	envFile   string
	showYear  bool
	plainMode bool
	noColor   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jcal [year] [month]",
		Short: "Jalali calendar for the terminal",
		Long: `jcal shows the Jalali (Persian solar) calendar next to the Gregorian one.

  jcal            current month
  jcal -y         current year
  jcal 9          month 9 of the current year
  jcal 1403       the whole of 1403
  jcal 1403 12    Esfand 1403
  jcal -y 9       the whole of year 9`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCalendar,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file with JCAL_* variables")
	pf.String("locale", "", "language of month and weekday names (en, fa)")
	pf.String("timezone", "", "IANA zone used to decide today's date")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Bool("future", false, "allow selecting dates after today")
	pf.String("holidays-file", "", "holiday data file, bypassing the cache")
	pf.BoolVarP(&noColor, "no-color", "N", false, "disable colour output")

	root.Flags().BoolVarP(&showYear, "year", "y", false, "show the whole year")
	root.Flags().BoolVarP(&plainMode, "plain", "n", false, "print once and exit instead of starting the UI")

	root.AddCommand(
		newConvertCmd(),
		newLeapCmd(),
		newServeCmd(),
		newExportCmd(),
		newHolidaysCmd(),
	)
	return root
}

func runCalendar(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	if noColor {
		render.SetNoColor(true)
		tui.SetNoColor(true)
	}

	req, err := parseRequest(a.calc.Today(), showYear, args)
	if err != nil {
		return err
	}

	svc, cacheValid := a.service()
	a.log.Debug("rendering calendar",
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Bool("year_view", req.Mode == calendar.ModeYear),
		zap.Bool("holiday_cache_valid", cacheValid),
	)

	if plainMode || req.Mode == calendar.ModeYear || !render.IsInteractive() {
		return render.RunPlain(render.PlainOptions{
			Writer:            cmd.OutOrStdout(),
			Service:           svc,
			Request:           req,
			HolidayCacheValid: cacheValid,
		})
	}
	return tui.Run(svc, a.calc, req, cacheValid)
}

// parseRequest turns positional arguments into a view request. A single
// number from 1 to 12 is a month of the current year; anything else is a
// year.
func parseRequest(today jalali.Date, year bool, args []string) (calendar.Request, error) {
	req := calendar.Request{Year: today.Year, Month: today.Month, Mode: calendar.ModeMonth}

	switch len(args) {
	case 0:
	case 1:
		n, err := parseNumber(args[0], "month or year")
		if err != nil {
			return calendar.Request{}, err
		}
		switch {
		case year:
			req.Year = n
		case n >= 1 && n <= 12:
			req.Month = n
		default:
			req.Year = n
			year = true
		}
	case 2:
		if year {
			return calendar.Request{}, errors.New("-y takes at most one year argument")
		}
		y, err := parseNumber(args[0], "year")
		if err != nil {
			return calendar.Request{}, err
		}
		m, err := parseNumber(args[1], "month")
		if err != nil {
			return calendar.Request{}, err
		}
		if m < 1 || m > 12 {
			return calendar.Request{}, fmt.Errorf("month must be between 1 and 12 (got %d)", m)
		}
		req.Year, req.Month = y, m
	default:
		return calendar.Request{}, errors.New("too many arguments, see --help")
	}

	if year {
		req.Mode = calendar.ModeYear
	}
	if req.Year < calendar.MinSupportedYear || req.Year > calendar.MaxSupportedYear {
		return calendar.Request{}, fmt.Errorf("year must be between %d and %d (got %d)",
			calendar.MinSupportedYear, calendar.MaxSupportedYear, req.Year)
	}
	return req.Normalize(), nil
}

func parseNumber(value, field string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as %s", value, field)
	}
	return n, nil
}
