package handlers

import (
	"errors"
	"net/http"
	"time"

	"clinicore/config"
	"clinicore/services/calendar"
	"clinicore/services/calsync"
	"clinicore/services/conflict"
	"clinicore/services/schedule"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
)

var ConflictResolver conflict.Resolver

// SetConflictResolver injects the resolver implementation.
func SetConflictResolver(r conflict.Resolver) {
	ConflictResolver = r
}

// ResolveConflict executes one resolution operation. The grid is re-reconciled
// and returned regardless of the outcome, so the client never keeps rendering
// a stale view after a mutation was attempted.
func ResolveConflict(c *gin.Context) {
	var res conflict.Resolution
	if err := c.ShouldBindJSON(&res); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resolution payload", "details": err.Error()})
		return
	}

	resolveErr := ConflictResolver.Resolve(c.Request.Context(), res)
	week := refreshWeek(c, res.Candidate.Date)

	if resolveErr == nil {
		c.JSON(http.StatusOK, gin.H{"resolved": true, "week": week})
		return
	}

	status, side := classifyResolutionError(resolveErr)
	c.JSON(status, gin.H{
		"resolved": false,
		"error":    resolveErr.Error(),
		"side":     side,
		"week":     week,
	})
}

// refreshWeek forces a fresh reconciliation pass for the conflict's week.
// Best effort: a refresh failure must not mask the resolution outcome.
func refreshWeek(c *gin.Context, date string) *schedule.WeekView {
	loc := config.Location()
	anchor, err := time.ParseInLocation(utils.DateLayout, date, loc)
	if err != nil {
		anchor = time.Now().In(loc)
	}
	week, err := ScheduleService.GetWeek(c.Request.Context(), anchor, true)
	if err != nil {
		return nil
	}
	return week
}

// classifyResolutionError reports the failing side so the operator knows
// which system still needs attention.
func classifyResolutionError(err error) (int, string) {
	var storeErr conflict.StoreWriteError
	var ambiguousErr conflict.AmbiguousPromotionError
	switch {
	case errors.As(err, &ambiguousErr):
		return http.StatusUnprocessableEntity, "internal"
	case errors.As(err, &storeErr):
		return http.StatusBadGateway, "internal"
	case errors.Is(err, calendar.ErrAuthExpired), errors.Is(err, calsync.ErrNotAuthenticated):
		return http.StatusUnauthorized, "external"
	case errors.Is(err, calendar.ErrProviderUnavailable), errors.Is(err, calsync.ErrSessionClosed):
		return http.StatusBadGateway, "external"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
