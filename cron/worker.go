package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicore/config"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
	"clinicore/services/notification"
	"clinicore/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSessionReminder = "reminder:session"

// reminderLead is how long before the scheduled instant the push goes out.
const reminderLead = time.Hour

type reminderPayload struct {
	SessionID string `json:"sessionId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueue,
	}
}

// NewReminderClient builds the enqueue-side client.
func NewReminderClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// ScheduleSessionReminder enqueues a reminder task to fire before the session
// starts. Sessions already closer than the lead time get no reminder.
func ScheduleSessionReminder(client *asynq.Client, session models.FutureSession) error {
	at := session.ScheduledAt.Add(-reminderLead)
	if !at.After(time.Now()) {
		return nil
	}
	payload, err := json.Marshal(reminderPayload{SessionID: session.ID})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}
	task := asynq.NewTask(TypeSessionReminder, payload)
	if _, err := client.Enqueue(task, asynq.ProcessAt(at), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue reminder for session %s: %w", session.ID, err)
	}
	return nil
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(repo scheduleRepo.ScheduleRepository, notifSvc notification.NotificationService) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionReminder, handleReminderTask(repo, notifSvc))

	go func() {
		logger := utils.GetLogger()
		logger.Info("starting reminder worker")
		if err := srv.Run(mux); err != nil {
			logger.Error("reminder worker stopped", zap.Error(err))
		}
	}()
}

// handleReminderTask re-reads the session at delivery time: sessions that
// were canceled, deleted or moved since enqueueing must not fire.
func handleReminderTask(repo scheduleRepo.ScheduleRepository, notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload reminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid reminder payload: %w", err)
		}

		session, err := repo.GetSessionByID(payload.SessionID)
		if err != nil {
			// Deleted sessions are not an error; the reminder is simply stale.
			utils.GetLogger().Debug("reminder for missing session skipped",
				zap.String("sessionId", payload.SessionID))
			return nil
		}
		if session.Status != models.SessionScheduled {
			return nil
		}
		if time.Until(session.ScheduledAt) > reminderLead+time.Minute {
			// Session was moved further out; a fresh reminder was enqueued.
			return nil
		}

		return notifSvc.NotifySessionReminder(ctx, *session)
	}
}
