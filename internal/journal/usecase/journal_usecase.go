package usecase

import (
	"errors"
	"fmt"

	journaldomain "migralog-backend/internal/journal/domain"
	"migralog-backend/internal/journal/repository"
)

// journalUsecase implements JournalUsecase interface
type journalUsecase struct {
	entryRepo repository.EntryRepository
}

// NewJournalUsecase creates a new instance of journalUsecase
func NewJournalUsecase(entryRepo repository.EntryRepository) JournalUsecase {
	return &journalUsecase{
		entryRepo: entryRepo,
	}
}

func (u *journalUsecase) CreateEntry(userID string, entry *journaldomain.Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	entry.UserID = userID
	return u.entryRepo.Create(entry)
}

func (u *journalUsecase) GetEntry(userID, id string) (*journaldomain.Entry, error) {
	return u.entryRepo.FindByID(userID, id)
}

func (u *journalUsecase) ListEntries(userID string, kind *journaldomain.EntryKind, limit, offset int) ([]*journaldomain.Entry, int64, error) {
	if kind != nil && !kind.Known() {
		return nil, 0, fmt.Errorf("unknown entry kind %q", *kind)
	}
	return u.entryRepo.FindByUser(userID, kind, limit, offset)
}

func (u *journalUsecase) UpdateEntry(userID string, entry *journaldomain.Entry) error {
	existing, err := u.entryRepo.FindByID(userID, entry.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("entry not found")
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	entry.UserID = userID
	entry.CreatedAt = existing.CreatedAt
	return u.entryRepo.Update(entry)
}

func (u *journalUsecase) DeleteEntry(userID, id string) error {
	return u.entryRepo.Delete(userID, id)
}

func validateEntry(entry *journaldomain.Entry) error {
	if !entry.Kind.Known() {
		return fmt.Errorf("unknown entry kind %q", entry.Kind)
	}
	if entry.Name == "" {
		return errors.New("entry name is required")
	}
	if entry.StartedAt.IsZero() {
		return errors.New("entry start time is required")
	}
	if entry.PainLevel != nil {
		if entry.Kind != journaldomain.KindMigraine {
			return errors.New("pain level is only valid on migraine entries")
		}
		if *entry.PainLevel < 0 || *entry.PainLevel > 10 {
			return errors.New("pain level must be between 0 and 10")
		}
	}
	if entry.EndedAt != nil && entry.EndedAt.Before(entry.StartedAt) {
		return errors.New("entry cannot end before it starts")
	}
	return nil
}
