package handlers

import (
	"net/http"
	"time"

	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/cron"
	"clinicore/models"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var (
	ScheduleRepo   scheduleRepo.ScheduleRepository
	ReminderClient *asynq.Client
)

// SetScheduleRepo injects the schedule repository.
func SetScheduleRepo(r scheduleRepo.ScheduleRepository) {
	ScheduleRepo = r
}

// SetReminderClient injects the reminder queue client.
func SetReminderClient(c *asynq.Client) {
	ReminderClient = c
}

// CreateSession books a new future session and schedules its reminder.
func CreateSession(c *gin.Context) {
	var input struct {
		PatientID   string    `json:"patientId" binding:"required"`
		PatientName string    `json:"patientName" binding:"required"`
		ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
		MeetingType string    `json:"meetingType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	session := models.FutureSession{
		ID:          uuid.New().String(),
		PatientID:   input.PatientID,
		PatientName: input.PatientName,
		ScheduledAt: input.ScheduledAt,
		MeetingType: input.MeetingType,
		Status:      models.SessionScheduled,
	}
	if session.MeetingType == "" {
		session.MeetingType = models.MeetingClinic
	}
	if err := ScheduleRepo.CreateSession(&session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "details": err.Error()})
		return
	}

	if ReminderClient != nil {
		if err := cron.ScheduleSessionReminder(ReminderClient, session); err != nil {
			utils.GetLogger().Warn("failed to schedule reminder",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
	}
	c.JSON(http.StatusCreated, session)
}

// RetimeSession moves a session to a new scheduled instant and re-enqueues
// its reminder; the stale one skips itself at delivery time.
func RetimeSession(c *gin.Context) {
	id := c.Param("id")
	var input struct {
		ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := ScheduleRepo.UpdateSessionTime(id, input.ScheduledAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retime session", "details": err.Error()})
		return
	}

	if ReminderClient != nil {
		if session, err := ScheduleRepo.GetSessionByID(id); err == nil {
			if err := cron.ScheduleSessionReminder(ReminderClient, *session); err != nil {
				utils.GetLogger().Warn("failed to reschedule reminder",
					zap.String("sessionId", id), zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "scheduledAt": input.ScheduledAt})
}

// UpdateSessionStatus transitions a session (completed, canceled).
func UpdateSessionStatus(c *gin.Context) {
	id := c.Param("id")
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	switch input.Status {
	case models.SessionScheduled, models.SessionCompleted, models.SessionCanceled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown session status"})
		return
	}
	if err := ScheduleRepo.UpdateSessionStatus(id, input.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": input.Status})
}

// DeleteSession removes a session permanently.
func DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := ScheduleRepo.DeleteSession(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// UpsertAvailability marks an hour bucket available or private.
func UpsertAvailability(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
		Hour string `json:"hour" binding:"required"`
		Kind string `json:"kind" binding:"required"`
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Kind != models.AvailabilityOpen && input.Kind != models.AvailabilityPrivate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be available or private"})
		return
	}
	entry := models.AvailabilityEntry{
		ID:   uuid.New().String(),
		Date: input.Date,
		Hour: input.Hour,
		Kind: input.Kind,
		Note: input.Note,
	}
	if err := ScheduleRepo.UpsertAvailability(&entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save availability", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteAvailability removes an availability entry.
func DeleteAvailability(c *gin.Context) {
	id := c.Param("id")
	if err := ScheduleRepo.DeleteAvailability(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete availability", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
