package models

import "time"

// Patient is a minimal patient record. The full clinical record lives in the
// practice-management CRUD layer; the reconciliation core only needs identity
// and a searchable name.
type Patient struct {
	ID        string    `bson:"id" json:"id"`
	FullName  string    `bson:"fullName" json:"fullName"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
