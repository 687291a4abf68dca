package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	authrepo "migralog-backend/internal/auth/repository"
	forecastdomain "migralog-backend/internal/forecast/domain"
	"migralog-backend/internal/forecast/usecase"
	"migralog-backend/pkg/fcm"
)

// RiskAlertScheduler recomputes each user's risk forecast on an interval and
// pushes an FCM notification when a day first enters the high zone. A sent
// alert is remembered per user and day so users are not re-notified every
// cycle.
type RiskAlertScheduler struct {
	forecastUsecase usecase.ForecastUsecase
	userRepo        authrepo.UserRepository
	fcmRepo         authrepo.FCMTokenRepository
	fcmClient       *fcm.Client
	interval        time.Duration
	stopChan        chan struct{}

	alerted map[string]bool // userID + date of alerts already sent
}

// NewRiskAlertScheduler creates a new scheduler
func NewRiskAlertScheduler(
	forecastUsecase usecase.ForecastUsecase,
	userRepo authrepo.UserRepository,
	fcmRepo authrepo.FCMTokenRepository,
	fcmClient *fcm.Client,
	interval time.Duration,
) *RiskAlertScheduler {
	return &RiskAlertScheduler{
		forecastUsecase: forecastUsecase,
		userRepo:        userRepo,
		fcmRepo:         fcmRepo,
		fcmClient:       fcmClient,
		interval:        interval,
		stopChan:        make(chan struct{}),
		alerted:         make(map[string]bool),
	}
}

// Start begins the scheduler loop
func (s *RiskAlertScheduler) Start() {
	if s.fcmClient == nil {
		log.Println("[RiskAlertScheduler] FCM client not available, scheduler disabled")
		return
	}

	log.Printf("[RiskAlertScheduler] Starting risk alert scheduler (interval: %s)", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndSendAlerts()
			case <-s.stopChan:
				log.Println("[RiskAlertScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *RiskAlertScheduler) Stop() {
	close(s.stopChan)
}

func (s *RiskAlertScheduler) checkAndSendAlerts() {
	s.pruneAlerted(time.Now())

	users, err := s.userRepo.FindHealthConnected()
	if err != nil {
		log.Printf("[RiskAlertScheduler] Error listing users: %v", err)
		return
	}

	for _, user := range users {
		forecast, err := s.forecastUsecase.GetForecast(user.ID)
		if err != nil {
			// Unconfigured scoring just means no alerts yet
			continue
		}

		for _, day := range forecast {
			if day.Zone != forecastdomain.ZoneHigh {
				continue
			}

			key := user.ID + "|" + day.Date.Format("2006-01-02")
			if s.alerted[key] {
				continue
			}

			if s.sendAlert(user.ID, day) {
				s.alerted[key] = true
			}
		}
	}
}

// pruneAlerted drops dedup entries for days that have already passed, so
// the map stays bounded by users x forecast window.
func (s *RiskAlertScheduler) pruneAlerted(today time.Time) {
	cutoff := today.Format("2006-01-02")
	for key := range s.alerted {
		if idx := strings.LastIndex(key, "|"); idx >= 0 && key[idx+1:] < cutoff {
			delete(s.alerted, key)
		}
	}
}

func (s *RiskAlertScheduler) sendAlert(userID string, day forecastdomain.DayRisk) bool {
	tokens, err := s.fcmRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[RiskAlertScheduler] Error getting FCM tokens for user %s: %v", userID, err)
		return false
	}
	if len(tokens) == 0 {
		// Nothing to deliver to, but remember it so we don't re-check
		return true
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	body := fmt.Sprintf("Your migraine risk on %s is high (%d%%).", day.Date.Format("Monday, Jan 2"), day.Percent)
	if len(day.TopContributors) > 0 {
		body += " Top factor: " + day.TopContributors[0].Name
	}

	notification := fcm.NotificationData{
		Title: "High migraine risk",
		Body:  body,
		Data: map[string]string{
			"type":         "risk_alert",
			"date":         day.Date.Format("2006-01-02"),
			"percent":      fmt.Sprintf("%d", day.Percent),
			"click_action": "/forecast",
		},
	}

	failedTokens, err := s.fcmClient.SendToDevices(context.Background(), tokenStrings, notification)
	if err != nil {
		log.Printf("[RiskAlertScheduler] Error sending alert for user %s: %v", userID, err)
		return false
	}

	log.Printf("[RiskAlertScheduler] Sent high-risk alert to %d devices for user %s", len(tokenStrings)-len(failedTokens), userID)

	// Cleanup failed tokens
	for _, token := range failedTokens {
		s.fcmRepo.DeleteToken(token)
	}
	return true
}
