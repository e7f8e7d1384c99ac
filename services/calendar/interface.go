package calendar

import (
	"context"
	"errors"
	"time"

	"clinicore/models"
)

// Error classes for external provider failures. AuthExpired is handled with a
// single silent token refresh by the sync manager; everything else propagates
// to the caller unmodified.
var (
	ErrAuthExpired         = errors.New("calendar authorization expired")
	ErrProviderUnavailable = errors.New("calendar provider unavailable")
)

// Provider is the external calendar contract the sync manager consumes.
// All instants are timezone-aware; the provider converts to its wire format.
type Provider interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]models.ExternalEvent, error)
	CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error)
	UpdateEvent(ctx context.Context, eventID string, start, end time.Time) error
	DeleteEvent(ctx context.Context, eventID string) error

	// RefreshToken forces a token exchange and returns the new expiry.
	RefreshToken(ctx context.Context) (time.Time, error)
}
