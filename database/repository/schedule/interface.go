package scheduleRepo

import (
	"time"

	"clinicore/models"
)

// ScheduleRepository is the internal store contract the reconciliation core
// consumes: future sessions and availability entries within a date range,
// plus the mutations the conflict resolver needs.
type ScheduleRepository interface {
	// Future sessions.
	GetSessionsInRange(from, to time.Time) ([]models.FutureSession, error)
	GetSessionByID(id string) (*models.FutureSession, error)
	CreateSession(session *models.FutureSession) error
	UpdateSessionTime(id string, scheduledAt time.Time) error
	SetSessionCalendarEvent(id string, calendarEventID string) error
	UpdateSessionStatus(id string, status string) error
	DeleteSession(id string) error

	// Availability entries.
	GetAvailabilityInRange(fromDate, toDate string) ([]models.AvailabilityEntry, error)
	UpsertAvailability(entry *models.AvailabilityEntry) error
	DeleteAvailability(id string) error
}
