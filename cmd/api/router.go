package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authdelivery "migralog-backend/internal/auth/delivery"
	authusecase "migralog-backend/internal/auth/usecase"
	forecastdelivery "migralog-backend/internal/forecast/delivery"
	forecastusecase "migralog-backend/internal/forecast/usecase"
	journaldelivery "migralog-backend/internal/journal/delivery"
	journalusecase "migralog-backend/internal/journal/usecase"
	syncdelivery "migralog-backend/internal/sync/delivery"
	syncscheduler "migralog-backend/internal/sync/scheduler"
	syncusecase "migralog-backend/internal/sync/usecase"
)

func SetupRoutes(
	r *gin.Engine,
	authUsecase authusecase.AuthUsecase,
	journalUsecase journalusecase.JournalUsecase,
	forecastUsecase forecastusecase.ForecastUsecase,
	syncEngines []syncusecase.SyncEngine,
	syncScheduler *syncscheduler.SyncScheduler,
) {
	authHandler := authdelivery.NewAuthHandler(authUsecase)
	journalHandler := journaldelivery.NewJournalHandler(journalUsecase)
	forecastHandler := forecastdelivery.NewForecastHandler(forecastUsecase)
	syncHandler := syncdelivery.NewSyncHandler(syncEngines, syncScheduler)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authdelivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/health-source", authdelivery.AuthMiddleware(authUsecase), authHandler.ConnectHealthSource)
			auth.DELETE("/health-source", authdelivery.AuthMiddleware(authUsecase), authHandler.DisconnectHealthSource)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Journal routes (protected)
		entries := api.Group("/entries")
		entries.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			entries.POST("", journalHandler.CreateEntry)
			entries.GET("", journalHandler.ListEntries)
			entries.GET("/:id", journalHandler.GetEntry)
			entries.PUT("/:id", journalHandler.UpdateEntry)
			entries.DELETE("/:id", journalHandler.DeleteEntry)
		}

		// Forecast routes (protected)
		forecast := api.Group("/forecast")
		forecast.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			forecast.GET("", forecastHandler.GetForecast)
			forecast.GET("/settings", forecastHandler.GetSettings)
			forecast.PUT("/settings", forecastHandler.UpdateSettings)
			forecast.GET("/severities", forecastHandler.GetSeverityMap)
			forecast.POST("/severities", forecastHandler.ClassifyEvent)
		}

		// Sync routes (protected)
		sync := api.Group("/sync")
		sync.Use(authdelivery.AuthMiddleware(authUsecase))
		{
			sync.GET("/status", syncHandler.GetStatus)
			sync.POST("/run", syncHandler.RunNow)
			sync.POST("/retry-failed", syncHandler.RetryFailed)
		}
	}
}
