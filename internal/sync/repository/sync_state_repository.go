package repository

import (
	"errors"
	"time"

	syncdomain "migralog-backend/internal/sync/domain"

	"gorm.io/gorm"
)

// syncStateRepository implements SyncStateRepository interface
type syncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository creates a new instance of syncStateRepository
func NewSyncStateRepository(db *gorm.DB) SyncStateRepository {
	return &syncStateRepository{
		db: db,
	}
}

func (r *syncStateRepository) Get(userID, domain string) (*syncdomain.SyncState, error) {
	var state syncdomain.SyncState
	err := r.db.Where("user_id = ? AND domain = ?", userID, domain).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *syncStateRepository) SaveToken(userID, domain, token string) error {
	return r.upsert(userID, domain, map[string]interface{}{
		"changes_token": token,
		"updated_at":    time.Now(),
	})
}

func (r *syncStateRepository) TouchPoll(userID, domain string, at time.Time) error {
	return r.upsert(userID, domain, map[string]interface{}{
		"last_poll_at": at,
		"updated_at":   time.Now(),
	})
}

func (r *syncStateRepository) TouchPush(userID, domain string, at time.Time) error {
	return r.upsert(userID, domain, map[string]interface{}{
		"last_push_at": at,
		"updated_at":   time.Now(),
	})
}

func (r *syncStateRepository) upsert(userID, domain string, updates map[string]interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var state syncdomain.SyncState
		err := tx.Where("user_id = ? AND domain = ?", userID, domain).First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state = syncdomain.SyncState{
				UserID:    userID,
				Domain:    domain,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&state).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return tx.Model(&syncdomain.SyncState{}).Where("id = ?", state.ID).Updates(updates).Error
	})
}
