// File: clinicore/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicore/config"
	"clinicore/cron"
	"clinicore/database"
	patientRepoPkg "clinicore/database/repository/patient"
	scheduleRepoPkg "clinicore/database/repository/schedule"
	staffRepoPkg "clinicore/database/repository/staff"
	"clinicore/handlers"
	"clinicore/middleware"
	"clinicore/models"
	"clinicore/routes"
	"clinicore/services/calendar"
	"clinicore/services/calsync"
	"clinicore/services/conflict"
	"clinicore/services/notification"
	"clinicore/services/schedule"
	"clinicore/services/staff"
	"clinicore/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	loc := config.Location()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	scheduleRepo := scheduleRepoPkg.NewMongoScheduleRepo()
	patientRepo := patientRepoPkg.NewMongoPatientRepo()
	staffRepo := staffRepoPkg.NewMongoStaffRepo()

	// external calendar provider and sync session.
	provider, err := calendar.NewGoogleProvider(context.Background())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar provider: %v", err)
	}
	syncManager := calsync.NewManager(provider, utils.GetCacheClient(), loc)

	// services.
	staffService := &staff.DefaultStaffService{Repo: staffRepo}
	notificationService := &notification.DefaultNotificationService{Staff: staffRepo}
	scheduleService := &schedule.DefaultScheduleService{
		Repo:     scheduleRepo,
		Sync:     syncManager,
		Notifier: notificationService,
		Loc:      loc,
	}
	conflictResolver := &conflict.DefaultResolver{
		Repo:     scheduleRepo,
		Patients: patientRepo,
		Sync:     syncManager,
		Loc:      loc,
	}

	// handlers.
	handlers.SetStaffService(staffService)
	handlers.SetScheduleService(scheduleService)
	handlers.SetConflictResolver(conflictResolver)
	handlers.SetSyncManager(syncManager)
	handlers.SetScheduleRepo(scheduleRepo)
	handlers.SetPatientRepo(patientRepo)

	// reminder queue.
	reminderClient := cron.NewReminderClient()
	handlers.SetReminderClient(reminderClient)
	conflictResolver.ScheduleReminder = func(s models.FutureSession) error {
		return cron.ScheduleSessionReminder(reminderClient, s)
	}
	cron.InitReminderWorker(scheduleRepo, notificationService)

	routes.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("listening on :%s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	syncManager.SignOut()
	if err := reminderClient.Close(); err != nil {
		logger.Sugar().Warnf("failed to close reminder client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
}
