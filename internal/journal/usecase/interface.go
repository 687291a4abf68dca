package usecase

import (
	journaldomain "migralog-backend/internal/journal/domain"
)

// JournalUsecase defines the journal operations exposed to the API layer
type JournalUsecase interface {
	CreateEntry(userID string, entry *journaldomain.Entry) error
	GetEntry(userID, id string) (*journaldomain.Entry, error)
	ListEntries(userID string, kind *journaldomain.EntryKind, limit, offset int) ([]*journaldomain.Entry, int64, error)
	UpdateEntry(userID string, entry *journaldomain.Entry) error
	DeleteEntry(userID, id string) error
}
