package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	authrepo "migralog-backend/internal/auth/repository"
	syncscheduler "migralog-backend/internal/sync/scheduler"
)

// DataUpdateNotification is published by the health platform when new
// records land for a user, so the backend can sync without waiting for
// the next scheduled cycle
type DataUpdateNotification struct {
	UserID   string `json:"user_id"`
	Domain   string `json:"domain"`
	Sequence uint64 `json:"sequence"`
}

type Service struct {
	pubsubClient *pubsub.Client
	userRepo     authrepo.UserRepository
	scheduler    *syncscheduler.SyncScheduler
	projectID    string
	topicName    string
	subName      string
	// Deduplication: track last processed sequence per user and domain.
	// Receive invokes the handler from multiple goroutines, so access
	// goes through the mutex.
	mu           sync.Mutex
	lastSequence map[string]uint64
}

func NewService(projectID, topicName string, userRepo authrepo.UserRepository, scheduler *syncscheduler.SyncScheduler, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient: client,
		userRepo:     userRepo,
		scheduler:    scheduler,
		projectID:    projectID,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
		lastSequence: make(map[string]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting notification service with topic: %s, subscription: %s", s.topicName, s.subName)

	// Ensure subscription exists
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic does not exist, cannot create subscription")
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification DataUpdateNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[PubSub] Failed to unmarshal notification: %v", err)
		return
	}

	log.Printf("[PubSub] Received data update for user %s domain %s (sequence: %d)",
		notification.UserID, notification.Domain, notification.Sequence)

	user, err := s.userRepo.FindByID(notification.UserID)
	if err != nil {
		log.Printf("[PubSub] Error finding user %s: %v", notification.UserID, err)
		return
	}
	if user == nil || !user.HealthConnected() {
		log.Printf("[PubSub] User %s not found or not connected, ignoring", notification.UserID)
		return
	}

	// Deduplication: skip if we already processed this sequence
	key := notification.UserID + "|" + notification.Domain
	if !s.recordSequence(key, notification.Sequence) {
		log.Printf("[PubSub] Skipping duplicate notification for %s (sequence %d)", key, notification.Sequence)
		return
	}

	if err := s.scheduler.RunNow(ctx, notification.UserID, notification.Domain); err != nil {
		log.Printf("[PubSub] Sync trigger failed for %s: %v", key, err)
	}
}

// recordSequence advances the dedup cursor for key. Returns false when the
// sequence was already processed. Sequence 0 means the publisher did not
// number the message and always passes.
func (s *Service) recordSequence(key string, sequence uint64) bool {
	if sequence == 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, seen := s.lastSequence[key]; seen && sequence <= last {
		return false
	}
	s.lastSequence[key] = sequence
	return true
}
