package models

import (
	"crypto/sha1"
	"encoding/hex"
)

// ConflictCandidate pairs an external event and an internal session that claim
// the same bucket without a recorded cross-link. Candidates are transient:
// recomputed on every reconciliation pass and re-surfaced until resolved.
type ConflictCandidate struct {
	ID      string        `json:"id"`
	Date    string        `json:"date"`
	Hour    string        `json:"hour"`
	Event   ExternalEvent `json:"event"`
	Session FutureSession `json:"session"`
}

// NewConflictCandidate builds a candidate with a deterministic ID so the same
// overlap yields the same ID across passes.
func NewConflictCandidate(date, hour string, ev ExternalEvent, s FutureSession) ConflictCandidate {
	sum := sha1.Sum([]byte(date + "|" + hour + "|" + ev.ID + "|" + s.ID))
	return ConflictCandidate{
		ID:      hex.EncodeToString(sum[:8]),
		Date:    date,
		Hour:    hour,
		Event:   ev,
		Session: s,
	}
}
