package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	api "migralog-backend/cmd/api"
	authdomain "migralog-backend/internal/auth/domain"
	authRepo "migralog-backend/internal/auth/repository"
	authUsecase "migralog-backend/internal/auth/usecase"
	forecastdomain "migralog-backend/internal/forecast/domain"
	forecastRepo "migralog-backend/internal/forecast/repository"
	forecastScheduler "migralog-backend/internal/forecast/scheduler"
	forecastUsecase "migralog-backend/internal/forecast/usecase"
	journaldomain "migralog-backend/internal/journal/domain"
	journalRepo "migralog-backend/internal/journal/repository"
	journalUsecase "migralog-backend/internal/journal/usecase"
	"migralog-backend/internal/notification"
	syncdomain "migralog-backend/internal/sync/domain"
	syncRepo "migralog-backend/internal/sync/repository"
	syncScheduler "migralog-backend/internal/sync/scheduler"
	syncUsecase "migralog-backend/internal/sync/usecase"
	"migralog-backend/pkg/config"
	"migralog-backend/pkg/database"
	"migralog-backend/pkg/fcm"
	"migralog-backend/pkg/googlefit"
	"migralog-backend/pkg/healthapi"
	"migralog-backend/pkg/remotestore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&journaldomain.Entry{},
		&forecastdomain.ForecastSettings{},
		&forecastdomain.SeverityMapping{},
		&syncdomain.OutboxItem{},
		&syncdomain.SyncState{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	entryRepo := journalRepo.NewEntryRepository(db)
	settingsRepo := forecastRepo.NewSettingsRepository(db)
	outboxRepo := syncRepo.NewOutboxRepository(db)
	syncStateRepo := syncRepo.NewSyncStateRepository(db)

	// Initialize external services
	healthSource := healthapi.NewClient(cfg.HealthAPIBaseURL)
	fitSource := googlefit.NewSource()
	tokenProvider := healthapi.NewOAuthTokenProvider(cfg.HealthClientID, cfg.HealthClientSecret, cfg.HealthTokenURL, userRepo)
	remoteStore := remotestore.NewClient(cfg.RemoteStoreURL, cfg.RemoteStoreAPIKey)

	// Build one sync engine per record domain. Nutrition and menstruation
	// come from the health platform API; activity comes from Google Fit.
	syncOpts := syncUsecase.Options{
		BatchSize:    cfg.SyncBatchSize,
		MaxPollPages: cfg.SyncMaxPollPages,
		RetryCeiling: cfg.SyncRetryCeiling,
		Retention:    cfg.SyncRetention,
	}
	engines := []syncUsecase.SyncEngine{
		syncUsecase.NewSyncEngine(syncUsecase.NutritionDomain(), syncOpts, healthSource, remoteStore, outboxRepo, syncStateRepo, tokenProvider),
		syncUsecase.NewSyncEngine(syncUsecase.MenstruationDomain(), syncOpts, healthSource, remoteStore, outboxRepo, syncStateRepo, tokenProvider),
		syncUsecase.NewSyncEngine(syncUsecase.ActivityDomain(), syncOpts, fitSource, remoteStore, outboxRepo, syncStateRepo, tokenProvider),
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg)
	journalUsecaseInstance := journalUsecase.NewJournalUsecase(entryRepo)
	forecastUsecaseInstance := forecastUsecase.NewForecastUsecase(settingsRepo, entryRepo)

	// Background sync scheduler
	scheduler := syncScheduler.NewSyncScheduler(engines, userRepo, cfg.SyncInterval)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize FCM Client (optional, risk alerts work without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
			fcmClient = nil
		}
	}

	// Risk alert scheduler
	riskAlerts := forecastScheduler.NewRiskAlertScheduler(forecastUsecaseInstance, userRepo, fcmTokenRepo, fcmClient, cfg.RiskAlertInterval)
	riskAlerts.Start()
	defer riskAlerts.Stop()

	// Initialize Notification Service (Pub/Sub)
	// Only start if project ID is configured
	if cfg.GoogleProjectID != "" {
		// Extract short topic name from full resource name if necessary
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}

		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, userRepo, scheduler, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification service: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, notification service disabled")
	}

	// Start server
	r := gin.Default()
	api.SetupRoutes(r, authUsecaseInstance, journalUsecaseInstance, forecastUsecaseInstance, engines, scheduler)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
