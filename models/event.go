package models

import "time"

// ExternalEvent is an event as received from the external calendar provider.
// Immutable once fetched; its lifecycle is fetch -> project -> discard. Only
// the derived slot references survive a reconciliation pass.
type ExternalEvent struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
}
