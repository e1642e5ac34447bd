// Package biztime holds the business timezone. Timestamps are stored and
// compared in UTC; the business zone only decides when daily jobs fire and
// how dates are rendered for operators.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when the configuration leaves the zone empty.
const DefaultTimezone = "Asia/Kolkata"

var (
	bizLocation *time.Location
	locMu       sync.RWMutex
)

// Init loads tz (or DefaultTimezone) as the business zone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	locMu.Lock()
	bizLocation = loc
	locMu.Unlock()
	return nil
}

func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(err)
	}
}

// Location returns the business zone, initialising the default on first use.
func Location() *time.Location {
	locMu.RLock()
	loc := bizLocation
	locMu.RUnlock()
	if loc != nil {
		return loc
	}
	MustInit("")
	return Location()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToBizTimezone converts t to the business zone.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}

// NextDailyAt returns the first instant strictly after from at hour:00 in
// the business zone, expressed in UTC.
func NextDailyAt(from time.Time, hour int) time.Time {
	local := from.In(Location())
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, Location())
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next.UTC()
}

// FormatInBizTimezone renders t in the business zone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
