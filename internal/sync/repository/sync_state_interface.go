package repository

import (
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
)

// SyncStateRepository defines access to the per-domain sync checkpoint
type SyncStateRepository interface {
	// Get returns the state row for a user and domain, or nil if none exists
	Get(userID, domain string) (*syncdomain.SyncState, error)
	// SaveToken stores a new continuation token, creating the row if needed
	SaveToken(userID, domain, token string) error
	// TouchPoll records a successful poll cycle
	TouchPoll(userID, domain string, at time.Time) error
	// TouchPush records a push attempt, even when the batch was empty
	TouchPush(userID, domain string, at time.Time) error
}
