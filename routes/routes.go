package routes

import (
	"clinicore/handlers"
	"clinicore/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all API endpoints.
func RegisterRoutes(r *gin.Engine) {
	r.POST("/api/staff/signin", handlers.StaffSignIn)

	auth := r.Group("/api", middleware.JWTAuthMiddleware())
	{
		auth.POST("/staff/device", handlers.RegisterDevice)

		auth.GET("/schedule/week", handlers.GetWeekSchedule)
		auth.POST("/schedule/conflicts/resolve", handlers.ResolveConflict)

		auth.POST("/sessions", handlers.CreateSession)
		auth.PUT("/sessions/:id/time", handlers.RetimeSession)
		auth.PUT("/sessions/:id/status", handlers.UpdateSessionStatus)
		auth.DELETE("/sessions/:id", handlers.DeleteSession)

		auth.POST("/availability", handlers.UpsertAvailability)
		auth.DELETE("/availability/:id", handlers.DeleteAvailability)

		auth.GET("/patients", handlers.SearchPatients)
		auth.POST("/patients", handlers.CreatePatient)

		auth.GET("/sync/status", handlers.SyncStatus)
		auth.POST("/sync/signin", handlers.SyncSignIn)
		auth.POST("/sync/refresh", handlers.SyncRefresh)
		auth.POST("/sync/signout", handlers.SyncSignOut)
	}
}
