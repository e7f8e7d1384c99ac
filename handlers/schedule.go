package handlers

import (
	"errors"
	"net/http"
	"time"

	"clinicore/config"
	"clinicore/services/calendar"
	"clinicore/services/calsync"
	"clinicore/services/schedule"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
)

var ScheduleService schedule.Service

// SetScheduleService injects the schedule service implementation.
func SetScheduleService(s schedule.Service) {
	ScheduleService = s
}

// GetWeekSchedule returns the reconciled weekly view for the week containing
// the given date (today by default). force=1 bypasses the month load cache,
// subject to the global fetch cooldown.
func GetWeekSchedule(c *gin.Context) {
	loc := config.Location()
	anchor := time.Now().In(loc)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation(utils.DateLayout, dateStr, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		anchor = parsed
	}
	force := c.Query("force") == "1"

	view, err := ScheduleService.GetWeek(c.Request.Context(), anchor, force)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// respondScheduleError maps sync/provider failures onto responses that tell
// the operator which side failed and what to do about it.
func respondScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calsync.ErrNotAuthenticated), errors.Is(err, calendar.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "calendar authorization expired, please sign in to the calendar again",
			"side":    "external",
			"details": err.Error(),
		})
	case errors.Is(err, calendar.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "calendar provider unavailable",
			"side":    "external",
			"details": err.Error(),
		})
	case errors.Is(err, calsync.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "calendar session was signed out during the operation",
			"side":    "external",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to build schedule",
			"side":    "internal",
			"details": err.Error(),
		})
	}
}
