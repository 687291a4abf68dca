package repository

import (
	"time"

	syncdomain "migralog-backend/internal/sync/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// outboxRepository implements OutboxRepository interface
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new instance of outboxRepository
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{
		db: db,
	}
}

func (r *outboxRepository) Stage(item *syncdomain.OutboxItem) error {
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = syncdomain.StatusPending
	}
	// Replace any prior intent for the same record: a fresh staging always
	// wins, including one that had already failed.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "domain"}, {Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"operation":   item.Operation,
			"status":      syncdomain.StatusPending,
			"retry_count": 0,
			"last_error":  "",
			"updated_at":  now,
		}),
	}).Create(item).Error
}

func (r *outboxRepository) FetchPending(userID, domain string, limit int) ([]syncdomain.OutboxItem, error) {
	var items []syncdomain.OutboxItem
	err := r.db.Where("user_id = ? AND domain = ? AND status = ?", userID, domain, syncdomain.StatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *outboxRepository) Remove(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&syncdomain.OutboxItem{}, "id IN ?", ids).Error
}

func (r *outboxRepository) MarkRetryableFailure(id uint, message string, retryCeiling int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var item syncdomain.OutboxItem
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return err
		}

		item.RetryCount++
		item.LastError = message
		item.UpdatedAt = time.Now()
		if item.RetryCount >= retryCeiling {
			item.Status = syncdomain.StatusFailed
		}
		return tx.Save(&item).Error
	})
}

func (r *outboxRepository) MarkPermanentFailure(id uint, message string) error {
	return r.db.Model(&syncdomain.OutboxItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     syncdomain.StatusPermanentFailure,
			"last_error": message,
			"updated_at": time.Now(),
		}).Error
}

func (r *outboxRepository) ResetFailed(userID, domain string) (int64, error) {
	result := r.db.Model(&syncdomain.OutboxItem{}).
		Where("user_id = ? AND domain = ? AND status = ?", userID, domain, syncdomain.StatusFailed).
		Updates(map[string]interface{}{
			"status":      syncdomain.StatusPending,
			"retry_count": 0,
			"last_error":  "",
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *outboxRepository) PurgePermanentFailures(cutoff time.Time) (int64, error) {
	result := r.db.Where("status = ? AND updated_at < ?", syncdomain.StatusPermanentFailure, cutoff).
		Delete(&syncdomain.OutboxItem{})
	return result.RowsAffected, result.Error
}

func (r *outboxRepository) CountByStatus(userID, domain string) (map[syncdomain.OutboxStatus]int64, error) {
	type statusCount struct {
		Status syncdomain.OutboxStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.Model(&syncdomain.OutboxItem{}).
		Select("status, count(*) as count").
		Where("user_id = ? AND domain = ?", userID, domain).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[syncdomain.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
