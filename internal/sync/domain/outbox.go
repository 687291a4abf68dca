package domain

import "time"

// Operation is the kind of write an outbox item carries to the remote store.
type Operation string

const (
	OperationUpsert Operation = "UPSERT"
	OperationDelete Operation = "DELETE"
)

// OutboxStatus represents the delivery state of an outbox item
type OutboxStatus string

const (
	// StatusPending items are picked up by the next push cycle
	StatusPending OutboxStatus = "pending"
	// StatusFailed items exceeded the retry ceiling and wait for a manual reset
	StatusFailed OutboxStatus = "failed"
	// StatusPermanentFailure items hit a non-retryable error and are only purged
	StatusPermanentFailure OutboxStatus = "permanent_failure"
)

// OutboxItem is one staged write awaiting delivery to the remote store.
// Re-staging the same (user, domain, external id) replaces the previous row,
// so the outbox never accumulates stale intents for the same record.
type OutboxItem struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	UserID     string       `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_outbox_record"`
	Domain     string       `json:"domain" gorm:"size:32;not null;uniqueIndex:idx_outbox_record;index:idx_outbox_domain_status"`
	ExternalID string       `json:"external_id" gorm:"size:128;not null;uniqueIndex:idx_outbox_record"`
	Operation  Operation    `json:"operation" gorm:"size:16;not null"`
	Status     OutboxStatus `json:"status" gorm:"size:24;default:pending;index:idx_outbox_domain_status"`
	RetryCount int          `json:"retry_count" gorm:"default:0"`
	LastError  string       `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt  time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// SyncState is the per-user, per-domain sync checkpoint. The changes token is
// empty until the first backfill completes; it is minted only after every
// backfilled record has been staged.
type SyncState struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_sync_state_domain"`
	Domain       string     `json:"domain" gorm:"size:32;not null;uniqueIndex:idx_sync_state_domain"`
	ChangesToken string     `json:"changes_token" gorm:"type:text"`
	LastPollAt   *time.Time `json:"last_poll_at,omitempty"`
	LastPushAt   *time.Time `json:"last_push_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
