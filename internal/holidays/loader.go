package holidays

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/lululau/jcal/internal/jalali"
)

// CacheMaxAge is how long a downloaded file stays fresh.
const CacheMaxAge = 6 * 30 * 24 * time.Hour

// Parse decodes holiday JSON. Years that are not integers are skipped.
func Parse(raw []byte) (Data, error) {
	var years []fileYear
	if err := json.Unmarshal(raw, &years); err != nil {
		return nil, fmt.Errorf("failed to parse holidays JSON: %w", err)
	}

	result := make(Data, len(years))
	for _, y := range years {
		year, err := strconv.Atoi(y.Year)
		if err != nil {
			continue
		}
		if result[year] == nil {
			result[year] = make(map[string]*Entry, len(y.Holiday))
		}
		for k, e := range y.Holiday {
			if e != nil {
				result[year][k] = e
			}
		}
	}
	return result, nil
}

// LoadFromFile loads holiday data from a JSON file.
func LoadFromFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}
	return Parse(raw)
}

// CachePath returns the location of the cached holidays file.
func CachePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "jcal", "holidays.json"), nil
}

// LoadFromCache loads holiday data from the user cache directory.
func LoadFromCache() (Data, error) {
	path, err := CachePath()
	if err != nil {
		return nil, err
	}
	return LoadFromFile(path)
}

// IsCacheValid reports whether the file at path exists and is younger than
// CacheMaxAge.
func IsCacheValid(path string, now time.Time) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return now.Sub(info.ModTime()) < CacheMaxAge, nil
}

func key(month, day int) string {
	return fmt.Sprintf("%02d-%02d", month, day)
}

// ForDate returns the entry for a Jalali date, or nil.
func ForDate(data Data, d jalali.Date) *Info {
	if data == nil {
		return nil
	}
	entry, ok := data[d.Year][key(d.Month, d.Day)]
	if !ok || entry == nil {
		return nil
	}
	return &Info{IsHoliday: entry.Holiday, Name: entry.Name}
}

// Coverage reports the span of years in data, or nil when it is empty.
func (d Data) Coverage() *Coverage {
	if len(d) == 0 {
		return nil
	}
	c := &Coverage{Count: len(d)}
	first := true
	for y := range d {
		if first || y < c.MinYear {
			c.MinYear = y
		}
		if first || y > c.MaxYear {
			c.MaxYear = y
		}
		first = false
	}
	return c
}

// Day is one dated holiday of a year.
type Day struct {
	Date jalali.Date
	Info
}

// Year lists the entries of a Jalali year in calendar order.
func (d Data) Year(year int) []Day {
	entries := d[year]
	out := make([]Day, 0, len(entries))
	for k, e := range entries {
		var m, day int
		if _, err := fmt.Sscanf(k, "%d-%d", &m, &day); err != nil {
			continue
		}
		out = append(out, Day{
			Date: jalali.Date{Year: year, Month: m, Day: day},
			Info: Info{IsHoliday: e.Holiday, Name: e.Name},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Month != out[j].Date.Month {
			return out[i].Date.Month < out[j].Date.Month
		}
		return out[i].Date.Day < out[j].Date.Day
	})
	return out
}

// ExtractCoverage parses the file at path and reports its year span.
func ExtractCoverage(path string) (*Coverage, error) {
	data, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	c := data.Coverage()
	if c == nil {
		return nil, errors.New("no year data found")
	}
	return c, nil
}
