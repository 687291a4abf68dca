package repository

import (
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
)

// OutboxRepository defines the durable outbox operations the sync engine needs
type OutboxRepository interface {
	// Stage inserts an item, replacing any existing row for the same
	// (user, domain, external id)
	Stage(item *syncdomain.OutboxItem) error
	// FetchPending reads up to limit pending items, oldest first
	FetchPending(userID, domain string, limit int) ([]syncdomain.OutboxItem, error)
	// Remove deletes successfully reconciled items
	Remove(ids []uint) error
	// MarkRetryableFailure increments the retry counter and records the error;
	// items at or past the ceiling transition to failed
	MarkRetryableFailure(id uint, message string, retryCeiling int) error
	// MarkPermanentFailure moves an item directly to permanent_failure
	MarkPermanentFailure(id uint, message string) error
	// ResetFailed returns failed items to pending with a zeroed retry count
	ResetFailed(userID, domain string) (int64, error)
	// PurgePermanentFailures deletes permanent_failure rows older than cutoff
	PurgePermanentFailures(cutoff time.Time) (int64, error)
	// CountByStatus reports outbox depth per status for one user and domain
	CountByStatus(userID, domain string) (map[syncdomain.OutboxStatus]int64, error)
}
