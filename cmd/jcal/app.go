package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/config"
	"github.com/lululau/jcal/internal/holidays"
	"github.com/lululau/jcal/internal/jalali"
	"github.com/lululau/jcal/internal/logger"
	"github.com/lululau/jcal/internal/months"
)

// app bundles what every subcommand needs after configuration is loaded.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	loc   *time.Location
	namer *months.Namer
	calc  *bounds.Calculator
	now   func() time.Time
}

func setup(cmd *cobra.Command) (*app, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	namer, err := months.New(cfg.Locale)
	if err != nil {
		return nil, err
	}
	calc, err := bounds.New(cfg.BoundsConfig(), bounds.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("selection bounds: %w", err)
	}

	log.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.String("locale", cfg.Locale),
		zap.String("timezone", cfg.Timezone),
		zap.Stringer("today", calc.Today()),
	)
	return &app{cfg: cfg, log: log, loc: loc, namer: namer, calc: calc, now: time.Now}, nil
}

// holidays returns the solar holidays of the selectable years overlaid with
// the configured file or the download cache. The flag reports whether the
// loaded data is current.
func (a *app) holidays() (holidays.Data, bool) {
	var (
		loaded holidays.Data
		valid  bool
	)
	if path := a.cfg.Holidays.File; path != "" {
		data, err := holidays.LoadFromFile(path)
		if err != nil {
			a.log.Warn("cannot load holiday file", zap.String("path", path), zap.Error(err))
		} else {
			loaded, valid = data, true
		}
	} else if path, err := holidays.CachePath(); err == nil {
		ok, err := holidays.IsCacheValid(path, a.now())
		switch {
		case err != nil:
			a.log.Debug("holiday cache unavailable", zap.String("path", path), zap.Error(err))
		case ok:
			if data, err := holidays.LoadFromCache(); err != nil {
				a.log.Warn("cannot read holiday cache", zap.String("path", path), zap.Error(err))
			} else {
				loaded, valid = data, true
			}
		}
	}

	r := a.calc.SelectableYearRange()
	low := max(r.Low, jalali.FirstYear)
	high := min(r.High, jalali.LastYear)
	years := make([]int, 0, max(high-low+1, 0))
	for y := low; y <= high; y++ {
		years = append(years, y)
	}
	return holidays.Merge(holidays.Fixed(years...), loaded), valid
}

func (a *app) service() (*calendar.Service, bool) {
	data, valid := a.holidays()
	svc := calendar.NewService(
		calendar.WithLocation(a.loc),
		calendar.WithNow(a.now),
		calendar.WithNamer(a.namer),
		calendar.WithBounds(a.calc),
		calendar.WithHolidays(data),
	)
	return svc, valid
}
