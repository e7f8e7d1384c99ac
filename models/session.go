package models

import "time"

// Future session statuses.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCanceled  = "canceled"
)

// Meeting types for a future session.
const (
	MeetingClinic = "clinic"
	MeetingVideo  = "video"
	MeetingPhone  = "phone"
)

// FutureSession is a persisted internal booking: a planned patient meeting
// created by staff and converted or canceled later.
type FutureSession struct {
	ID          string    `bson:"id" json:"id"`
	PatientID   string    `bson:"patientId" json:"patientId"`
	PatientName string    `bson:"patientName" json:"patientName"`
	ScheduledAt time.Time `bson:"scheduledAt" json:"scheduledAt"`
	MeetingType string    `bson:"meetingType" json:"meetingType"`
	Status      string    `bson:"status" json:"status"`

	// CalendarEventID is the weak cross-link to the external calendar event
	// this session mirrors, empty when unlinked. Either side can be deleted
	// independently; consumers must treat this as a lookup key, never as a
	// guarantee the event still exists.
	CalendarEventID string `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
