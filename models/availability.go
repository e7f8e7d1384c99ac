package models

// Availability entry kinds.
const (
	AvailabilityOpen    = "available"
	AvailabilityPrivate = "private"
)

// AvailabilityEntry marks a single hour bucket as open for booking or blocked
// for private time. Entries never override a booking or an external event.
type AvailabilityEntry struct {
	ID   string `bson:"id" json:"id"`
	Date string `bson:"date" json:"date"` // "2006-01-02"
	Hour string `bson:"hour" json:"hour"` // "15:04", always :00
	Kind string `bson:"kind" json:"kind"` // "available" or "private"
	Note string `bson:"note,omitempty" json:"note,omitempty"`
}
