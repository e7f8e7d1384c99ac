package notification

import (
	"context"

	"clinicore/models"
)

// NotificationService defines methods for sending FCM pushes to the
// practice's staff devices.
type NotificationService interface {
	NotifyConflicts(ctx context.Context, weekStart string, count int) error
	NotifySessionReminder(ctx context.Context, session models.FutureSession) error
}
