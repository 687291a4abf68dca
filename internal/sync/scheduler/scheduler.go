package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	authrepo "migralog-backend/internal/auth/repository"
	syncdomain "migralog-backend/internal/sync/domain"
	"migralog-backend/internal/sync/usecase"
)

// SyncScheduler runs every configured sync engine for every user with a
// linked health source on a fixed interval
type SyncScheduler struct {
	engines  []usecase.SyncEngine
	userRepo authrepo.UserRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewSyncScheduler creates a new scheduler
func NewSyncScheduler(engines []usecase.SyncEngine, userRepo authrepo.UserRepository, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		engines:  engines,
		userRepo: userRepo,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SyncScheduler) Start() {
	log.Printf("[SyncScheduler] Starting sync scheduler (interval: %s, domains: %d)", s.interval, len(s.engines))

	go func() {
		// Run immediately on start
		s.runAllUsers()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runAllUsers()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	close(s.stopChan)
}

// RunNow runs one sync cycle for a single user, across all domains or a
// single named one. Used by the API trigger and the pubsub listener.
func (s *SyncScheduler) RunNow(ctx context.Context, userID, domain string) error {
	matched := false
	for _, engine := range s.engines {
		if domain != "" && engine.Domain() != domain {
			continue
		}
		matched = true
		s.runEngine(ctx, engine, userID)
	}
	if domain != "" && !matched {
		return fmt.Errorf("unknown sync domain: %s", domain)
	}
	return nil
}

func (s *SyncScheduler) runAllUsers() {
	users, err := s.userRepo.FindHealthConnected()
	if err != nil {
		log.Printf("[SyncScheduler] Error listing connected users: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	ctx := context.Background()
	for _, user := range users {
		for _, engine := range s.engines {
			s.runEngine(ctx, engine, user.ID)
		}
	}
}

func (s *SyncScheduler) runEngine(ctx context.Context, engine usecase.SyncEngine, userID string) {
	result := engine.RunOnce(ctx, userID)
	switch result {
	case syncdomain.JobRetry:
		log.Printf("[SyncScheduler] Sync %s for user %s deferred, will retry next cycle", engine.Domain(), userID)
	case syncdomain.JobFailure:
		log.Printf("[SyncScheduler] Sync %s for user %s failed permanently", engine.Domain(), userID)
	}
}
