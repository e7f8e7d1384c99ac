// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis staff authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// Weekly grid contract. The grid covers hours [GridStartHour, GridEndHour)
// on each of the 7 days; the last bucket is GridEndHour-1.
const (
	GridStartHour = 8
	GridEndHour   = 23
)

// WeekStartDay is the first day of the displayed week.
const WeekStartDay = time.Sunday

// MeetingDuration is the canonical length of a patient meeting. Placement on
// the grid always uses this span regardless of the duration the source declares.
const MeetingDuration = 90 * time.Minute

// FetchCooldown is the minimum interval between calls to the external
// calendar provider, regardless of period or force.
const FetchCooldown = 30 * time.Second

// MonthKeyLayout formats the month-granularity cache key for fetched events.
const MonthKeyLayout = "2006-01"

// DateLayout and HourLayout format grid bucket keys.
const (
	DateLayout = "2006-01-02"
	HourLayout = "15:04"
)
