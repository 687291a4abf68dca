package usecase

import (
	"context"
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
)

// SyncStatus is the externally visible health of one sync domain for a user.
type SyncStatus struct {
	Domain     string                            `json:"domain"`
	Backfilled bool                              `json:"backfilled"`
	LastPollAt *time.Time                        `json:"last_poll_at,omitempty"`
	LastPushAt *time.Time                        `json:"last_push_at,omitempty"`
	Outbox     map[syncdomain.OutboxStatus]int64 `json:"outbox"`
}

// SyncEngine drives one health-data domain through the backfill/poll/push
// cycle and exposes its status and failure controls.
type SyncEngine interface {
	Domain() string
	RunOnce(ctx context.Context, userID string) syncdomain.JobResult
	Status(userID string) (*SyncStatus, error)
	RetryFailed(userID string) (int64, error)
}
