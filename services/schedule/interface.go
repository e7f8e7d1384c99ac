package schedule

import (
	"context"
	"time"

	"clinicore/models"
)

// WeekView is what the UI renders: the merged grid plus the conflict
// candidates of the pass that produced it.
type WeekView struct {
	Grid      *models.WeekGrid           `json:"grid"`
	Conflicts []models.ConflictCandidate `json:"conflicts"`

	// FromCache is set when any of the week's months came from the load
	// cache; RetryAfterSeconds carries the cooldown advisory when a real
	// fetch was blocked.
	FromCache         bool `json:"fromCache,omitempty"`
	RetryAfterSeconds int  `json:"retryAfterSeconds,omitempty"`

	// SyncRequired is set when the external session is not authenticated and
	// the view was built from internal records only.
	SyncRequired bool `json:"syncRequired,omitempty"`
}

// Service produces the reconciled weekly view.
type Service interface {
	GetWeek(ctx context.Context, anchor time.Time, force bool) (*WeekView, error)
}
