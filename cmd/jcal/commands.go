package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/export"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/render"
	"github.com/lululau/jcal/internal/server"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert dates between the Jalali and Gregorian calendars",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "to-jalali YYYY-MM-DD",
		Short:   "Convert a Gregorian date to Jalali",
		Example: "  jcal convert to-jalali 2024-08-05",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			g, err := parseDate(args[0])
			if err != nil {
				return err
			}
			t := time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
			if y, m, d := t.Date(); y != g.Year || int(m) != g.Month || d != g.Day {
				return fmt.Errorf("%s is not a valid Gregorian date", args[0])
			}
			j, err := jalali.GregorianToJalali(g.Year, g.Month, g.Day)
			if err != nil {
				return err
			}
			a.log.Debug("converted", zap.Stringer("gregorian", g), zap.Stringer("jalali", j))
			return printJalali(cmd.OutOrStdout(), a, j)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "to-gregorian YYYY-MM-DD",
		Short:   "Convert a Jalali date to Gregorian",
		Example: "  jcal convert to-gregorian 1403-05-15",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			j, err := parseDate(args[0])
			if err != nil {
				return err
			}
			if err := jalali.Validate(j); err != nil {
				return err
			}
			g, err := jalali.JalaliToGregorian(j.Year, j.Month, j.Day)
			if err != nil {
				return err
			}
			a.log.Debug("converted", zap.Stringer("jalali", j), zap.Stringer("gregorian", g))
			t := time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", g, t.Format("Monday, 2 January 2006"))
			return err
		},
	})
	return cmd
}

func printJalali(w io.Writer, a *app, j jalali.Date) error {
	name, err := a.namer.Name(j.Month)
	if err != nil {
		return err
	}
	wd, err := jalali.Weekday(j)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s (%s, %d %s %d)\n", j, wd, j.Day, name, j.Year)
	return err
}

func newLeapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leap YEAR",
		Short: "Report whether a Jalali year has 366 days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseNumber(args[0], "year")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "33-year cycle: %t\n", jalali.IsLeapYear(year))
			exact, err := jalali.IsLeapYearExact(year)
			if err != nil {
				_, err = fmt.Fprintf(out, "break table:   unavailable (%v)\n", err)
				return err
			}
			_, err = fmt.Fprintf(out, "break table:   %t\n", exact)
			return err
		},
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			srv, err := server.New(server.Options{
				Addr:      a.cfg.Server.Addr,
				Bounds:    a.cfg.BoundsConfig(),
				Location:  a.loc,
				Logger:    a.log,
				Language:  a.cfg.Locale,
				RateLimit: a.cfg.Server.RateLimit,
				Burst:     a.cfg.Server.Burst,
			})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.StartWithContext(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write calendar data as iCalendar",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")

	cmd.AddCommand(&cobra.Command{
		Use:   "holidays [year]",
		Short: "Export the holidays of a Jalali year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			year := a.calc.Today().Year
			if len(args) == 1 {
				if year, err = parseNumber(args[0], "year"); err != nil {
					return err
				}
			}
			data, _ := a.holidays()
			if _, ok := data[year]; !ok {
				data = holidays.Merge(holidays.Fixed(year), data)
			}
			enc := &export.Encoder{Now: a.now, Namer: a.namer}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return enc.Holidays(w, year, data)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "month [year] [month]",
		Short: "Export a Jalali month as a single all-day event",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			req, err := parseRequest(a.calc.Today(), false, args)
			if err != nil {
				return err
			}
			if req.Mode != calendar.ModeMonth {
				return fmt.Errorf("expected a month, got year %d", req.Year)
			}
			svc, _ := a.service()
			view, err := svc.Month(req.Year, req.Month)
			if err != nil {
				return err
			}
			enc := &export.Encoder{Now: a.now, Namer: a.namer}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return enc.Month(w, view)
			})
		},
	})
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newHolidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage holiday data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Download the latest holiday data into the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			dest, err := holidays.CachePath()
			if err != nil {
				return err
			}
			url := a.cfg.Holidays.URL
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var res *holidays.Result
			if render.IsInteractive() {
				res, err = holidays.DownloadInteractive(ctx, url, dest)
			} else {
				a.log.Info("downloading holiday data", zap.String("url", url), zap.String("dest", dest))
				res, err = holidays.Download(ctx, nil, url, dest, nil)
			}
			if err != nil {
				return fmt.Errorf("download holidays: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), holidays.Summary(res))
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the holiday cache location, age and coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			path := a.cfg.Holidays.File
			if path == "" {
				if path, err = holidays.CachePath(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file: %s\n", path)
			st, err := os.Stat(path)
			if err != nil {
				_, err = fmt.Fprintln(out, "status: missing, run `jcal holidays update`")
				return err
			}
			valid, _ := holidays.IsCacheValid(path, a.now())
			status := "current"
			if !valid {
				status = "stale"
			}
			fmt.Fprintf(out, "modified: %s (%s)\n", st.ModTime().Format("2006-01-02 15:04"), status)
			c, err := holidays.ExtractCoverage(path)
			if err != nil {
				return err
			}
			if c == nil {
				_, err = fmt.Fprintln(out, "coverage: empty")
				return err
			}
			_, err = fmt.Fprintf(out, "coverage: %d to %d (%d years)\n", c.MinYear, c.MaxYear, c.Count)
			return err
		},
	})
	return cmd
}

// parseDate reads YYYY-MM-DD; the year may be negative and "/" may separate
// the fields.
func parseDate(s string) (jalali.Date, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), "-")
	if len(parts) != 3 {
		return jalali.Date{}, fmt.Errorf("cannot parse %q as YYYY-MM-DD", s)
	}
	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return jalali.Date{}, fmt.Errorf("cannot parse %q as YYYY-MM-DD", s)
		}
		out[i] = n
	}
	if neg {
		out[0] = -out[0]
	}
	return jalali.Date{Year: out[0], Month: out[1], Day: out[2]}, nil
}
