package handlers

import (
	"net/http"

	"clinicore/services/calsync"

	"github.com/gin-gonic/gin"
)

var SyncManager calsync.Manager

// SetSyncManager injects the sync session manager.
func SetSyncManager(m calsync.Manager) {
	SyncManager = m
}

// SyncStatus reports the external calendar session state.
func SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, SyncManager.Status())
}

// SyncSignIn establishes the external calendar session.
func SyncSignIn(c *gin.Context) {
	if err := SyncManager.SignIn(c.Request.Context()); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SyncManager.Status())
}

// SyncRefresh forces a token refresh.
func SyncRefresh(c *gin.Context) {
	if err := SyncManager.Refresh(c.Request.Context(), true); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SyncManager.Status())
}

// SyncSignOut tears the session down and clears all cached calendar data.
func SyncSignOut(c *gin.Context) {
	SyncManager.SignOut()
	c.JSON(http.StatusOK, SyncManager.Status())
}
