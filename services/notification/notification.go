package notification

import (
	"context"
	"fmt"

	staffRepo "clinicore/database/repository/staff"
	"clinicore/models"
	"clinicore/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Staff staffRepo.StaffRepository
}

// NotifyConflicts pushes a double-booking alert for a reconciled week.
func (s *DefaultNotificationService) NotifyConflicts(ctx context.Context, weekStart string, count int) error {
	title := "Calendar conflicts detected"
	body := fmt.Sprintf("%d double-booked slot(s) in the week of %s need review", count, weekStart)
	return s.broadcast(ctx, title, body, map[string]string{
		"kind":      "conflict",
		"weekStart": weekStart,
	})
}

// NotifySessionReminder pushes an upcoming-session reminder.
func (s *DefaultNotificationService) NotifySessionReminder(ctx context.Context, session models.FutureSession) error {
	title := "Upcoming session"
	body := fmt.Sprintf("%s at %s", session.PatientName, session.ScheduledAt.Format("15:04"))
	return s.broadcast(ctx, title, body, map[string]string{
		"kind":      "reminder",
		"sessionId": session.ID,
	})
}

// broadcast sends the push to every staff device with a registered token.
func (s *DefaultNotificationService) broadcast(ctx context.Context, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return fmt.Errorf("broadcast: FCM client not initialized")
	}
	staff, err := s.Staff.List()
	if err != nil {
		return fmt.Errorf("broadcast: could not list staff: %w", err)
	}

	logger := utils.GetLogger()
	sent := 0
	for _, member := range staff {
		if member.FCMToken == "" {
			continue
		}
		msg := &messaging.Message{
			Token: member.FCMToken,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
			logger.Warn("push send failed",
				zap.String("staffId", member.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("broadcast: no staff device received the push")
	}
	return nil
}
