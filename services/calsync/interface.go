package calsync

import (
	"context"
	"errors"
	"time"

	"clinicore/models"
)

// ErrSessionClosed is returned when an operation completes after sign-out
// cleared the session; its result is discarded, no state is mutated.
var ErrSessionClosed = errors.New("sync session closed")

// ErrNotAuthenticated is returned for provider operations attempted without
// an authenticated session.
var ErrNotAuthenticated = errors.New("sync session not authenticated")

// FetchResult is the outcome of a FetchEvents call. A rate-limited call is
// not an error: the previously cached events come back with an advisory
// RetryAfter.
type FetchResult struct {
	Events     []models.ExternalEvent
	FromCache  bool
	RetryAfter time.Duration
}

// Status is a snapshot of the session state.
type Status struct {
	Authenticated bool      `json:"authenticated"`
	TokenExpiry   time.Time `json:"tokenExpiry,omitempty"`
	LastFetch     time.Time `json:"lastFetch,omitempty"`
	LoadedPeriods []string  `json:"loadedPeriods"`
}

// Manager owns the external provider's session: token lifecycle, the global
// fetch cooldown, the month-granularity load cache and event mutations.
type Manager interface {
	IsValid() bool
	Refresh(ctx context.Context, force bool) error
	SignIn(ctx context.Context) error
	SignOut()
	Status() Status

	// FetchEvents returns the events of one month period ("2006-01").
	FetchEvents(ctx context.Context, period string, force bool) (*FetchResult, error)

	CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error)
	UpdateEvent(ctx context.Context, eventID string, start, end time.Time) error
	DeleteEvent(ctx context.Context, eventID string) error
}
