// Package freshness decides, per data category, whether persisted registry
// data is recent enough to skip a re-fetch. It replaces the ad-hoc
// loaded/validated booleans the UI used to keep.
package freshness

import "time"

// DefaultZone anchors "same calendar day" comparisons. Both upstream
// datasets refresh on Israeli local time, so that is the reference zone;
// see DESIGN.md for the decision record.
const DefaultZone = "Asia/Jerusalem"

// Checker evaluates calendar-day freshness in a fixed zone.
type Checker struct {
	loc *time.Location
}

// NewChecker resolves the named zone, falling back to UTC when the zone
// database is unavailable.
func NewChecker(zone string) *Checker {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return &Checker{loc: loc}
}

// NewCheckerIn builds a checker on an explicit location, for tests.
func NewCheckerIn(loc *time.Location) *Checker {
	return &Checker{loc: loc}
}

// Fresh reports whether data stamped at updatedAt is still usable at now:
// the two instants share a calendar date in the reference zone, and the
// category actually holds data (hasData). A zero timestamp is never fresh.
//
// forceRefresh overrides everything — an explicit user refresh always
// re-fetches.
func (c *Checker) Fresh(updatedAt, now time.Time, hasData, forceRefresh bool) bool {
	if forceRefresh {
		return false
	}
	if updatedAt.IsZero() || !hasData {
		return false
	}
	uy, um, ud := updatedAt.In(c.loc).Date()
	ny, nm, nd := now.In(c.loc).Date()
	return uy == ny && um == nm && ud == nd
}
