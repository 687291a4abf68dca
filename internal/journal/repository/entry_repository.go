package repository

import (
	"errors"
	"time"

	journaldomain "migralog-backend/internal/journal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// entryRepository implements EntryRepository interface
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new instance of entryRepository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{
		db: db,
	}
}

func (r *entryRepository) Create(entry *journaldomain.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	return r.db.Create(entry).Error
}

func (r *entryRepository) FindByID(userID, id string) (*journaldomain.Entry, error) {
	var entry journaldomain.Entry
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) FindByUser(userID string, kind *journaldomain.EntryKind, limit, offset int) ([]*journaldomain.Entry, int64, error) {
	var entries []*journaldomain.Entry
	var total int64

	query := r.db.Model(&journaldomain.Entry{}).Where("user_id = ?", userID)
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("started_at DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}

func (r *entryRepository) FindByKindsInRange(userID string, kinds []journaldomain.EntryKind, from, to time.Time) ([]*journaldomain.Entry, error) {
	var entries []*journaldomain.Entry
	err := r.db.Where("user_id = ? AND kind IN ? AND started_at >= ? AND started_at <= ?", userID, kinds, from, to).
		Order("started_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) Update(entry *journaldomain.Entry) error {
	entry.UpdatedAt = time.Now()
	return r.db.Save(entry).Error
}

func (r *entryRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&journaldomain.Entry{}).Error
}
