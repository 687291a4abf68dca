package repository

import (
	"time"

	journaldomain "migralog-backend/internal/journal/domain"
)

// EntryRepository defines the interface for journal entry persistence
type EntryRepository interface {
	Create(entry *journaldomain.Entry) error
	FindByID(userID, id string) (*journaldomain.Entry, error)
	// FindByUser lists a user's entries newest first, optionally filtered by kind
	FindByUser(userID string, kind *journaldomain.EntryKind, limit, offset int) ([]*journaldomain.Entry, int64, error)
	// FindByKindsInRange returns entries of the given kinds whose start falls
	// inside [from, to], used by the forecast engine's event window
	FindByKindsInRange(userID string, kinds []journaldomain.EntryKind, from, to time.Time) ([]*journaldomain.Entry, error)
	Update(entry *journaldomain.Entry) error
	Delete(userID, id string) error
}
