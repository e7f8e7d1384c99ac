package models

// SlotStatus is the visual state of one grid bucket.
type SlotStatus string

const (
	SlotUnspecified SlotStatus = "unspecified"
	SlotAvailable   SlotStatus = "available"
	SlotPrivate     SlotStatus = "private"
	SlotBooked      SlotStatus = "booked"
	SlotCompleted   SlotStatus = "completed"
	SlotCanceled    SlotStatus = "canceled"
)

// Sync states a bucket can carry after reconciliation.
const (
	SyncNone     = ""
	SyncSynced   = "synced"
	SyncConflict = "conflict"
)

// Slot source reference kinds.
const (
	RefCalendar     = "calendar"
	RefSession      = "session"
	RefAvailability = "availability"
)

// SlotRef is a weak back-reference from a bucket to the record projected into it.
type SlotRef struct {
	Source string `json:"source"` // "calendar", "session" or "availability"
	ID     string `json:"id"`
}

// Slot is one hour bucket in the weekly grid. Slots are transient: rebuilt on
// every reconciliation pass, never persisted.
type Slot struct {
	Date       string     `json:"date"` // "2006-01-02"
	Hour       string     `json:"hour"` // "15:04", always :00
	Status     SlotStatus `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	SyncStatus string     `json:"syncStatus,omitempty"`

	// Partial-hour overlap metadata. A bucket with neither flag set is
	// spanned for the full hour.
	IsFirstHour bool `json:"isFirstHour,omitempty"`
	StartMinute int  `json:"startMinute,omitempty"`
	IsLastHour  bool `json:"isLastHour,omitempty"`
	EndMinute   int  `json:"endMinute,omitempty"`

	Refs []SlotRef `json:"refs,omitempty"`
}

// HasRef reports whether the slot carries a back-reference to the given source record.
func (s *Slot) HasRef(source, id string) bool {
	for _, r := range s.Refs {
		if r.Source == source && r.ID == id {
			return true
		}
	}
	return false
}

// DaySchedule holds all buckets of one day, keyed by hour ("08:00".."22:00").
type DaySchedule struct {
	Date  string           `json:"date"`
	Slots map[string]*Slot `json:"slots"`
}

// WeekGrid is the merged weekly view: 7 consecutive days starting on the
// configured week start day, each with the full fixed bucket window.
type WeekGrid struct {
	WeekStart string         `json:"weekStart"`
	Days      []*DaySchedule `json:"days"`
}

// Day returns the schedule for the given date, or nil when the date is
// outside the visible week.
func (g *WeekGrid) Day(date string) *DaySchedule {
	for _, d := range g.Days {
		if d.Date == date {
			return d
		}
	}
	return nil
}

// SlotAt returns the bucket at (date, hour), or nil when outside the grid.
func (g *WeekGrid) SlotAt(date, hour string) *Slot {
	day := g.Day(date)
	if day == nil {
		return nil
	}
	return day.Slots[hour]
}
