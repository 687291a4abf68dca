package usecase

import (
	"testing"
	"time"

	journaldomain "migralog-backend/internal/journal/domain"
	"migralog-backend/internal/journal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUsecase(t *testing.T) JournalUsecase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&journaldomain.Entry{}))
	return NewJournalUsecase(repository.NewEntryRepository(db))
}

func intPtr(n int) *int { return &n }

func TestCreateEntryRejectsUnknownKind(t *testing.T) {
	uc := newUsecase(t)

	err := uc.CreateEntry("u1", &journaldomain.Entry{
		Kind: "snack", Name: "crisps", StartedAt: time.Now(),
	})
	assert.ErrorContains(t, err, "unknown entry kind")
}

func TestCreateEntryRequiresNameAndStart(t *testing.T) {
	uc := newUsecase(t)

	err := uc.CreateEntry("u1", &journaldomain.Entry{Kind: journaldomain.KindTrigger, StartedAt: time.Now()})
	assert.ErrorContains(t, err, "name is required")

	err = uc.CreateEntry("u1", &journaldomain.Entry{Kind: journaldomain.KindTrigger, Name: "stress"})
	assert.ErrorContains(t, err, "start time is required")
}

func TestPainLevelOnlyOnMigraines(t *testing.T) {
	uc := newUsecase(t)

	err := uc.CreateEntry("u1", &journaldomain.Entry{
		Kind: journaldomain.KindTrigger, Name: "wine", StartedAt: time.Now(), PainLevel: intPtr(4),
	})
	assert.ErrorContains(t, err, "only valid on migraine")

	err = uc.CreateEntry("u1", &journaldomain.Entry{
		Kind: journaldomain.KindMigraine, Name: "attack", StartedAt: time.Now(), PainLevel: intPtr(11),
	})
	assert.ErrorContains(t, err, "between 0 and 10")

	err = uc.CreateEntry("u1", &journaldomain.Entry{
		Kind: journaldomain.KindMigraine, Name: "attack", StartedAt: time.Now(), PainLevel: intPtr(7),
	})
	assert.NoError(t, err)
}

func TestEndCannotPrecedeStart(t *testing.T) {
	uc := newUsecase(t)

	start := time.Now()
	end := start.Add(-time.Hour)
	err := uc.CreateEntry("u1", &journaldomain.Entry{
		Kind: journaldomain.KindMigraine, Name: "attack", StartedAt: start, EndedAt: &end,
	})
	assert.Error(t, err)
}

func TestUpdateEntryRequiresExistingRow(t *testing.T) {
	uc := newUsecase(t)

	err := uc.UpdateEntry("u1", &journaldomain.Entry{
		ID: "missing", Kind: journaldomain.KindTrigger, Name: "stress", StartedAt: time.Now(),
	})
	assert.ErrorContains(t, err, "not found")
}

func TestUpdateEntryPreservesOwnerAndCreatedAt(t *testing.T) {
	uc := newUsecase(t)

	entry := &journaldomain.Entry{Kind: journaldomain.KindTrigger, Name: "stress", StartedAt: time.Now()}
	require.NoError(t, uc.CreateEntry("u1", entry))
	created := entry.CreatedAt

	updated := &journaldomain.Entry{
		ID: entry.ID, Kind: journaldomain.KindTrigger, Name: "work stress", StartedAt: entry.StartedAt,
	}
	require.NoError(t, uc.UpdateEntry("u1", updated))

	found, err := uc.GetEntry("u1", entry.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "work stress", found.Name)
	assert.WithinDuration(t, created, found.CreatedAt, time.Second)
}

func TestListEntriesRejectsUnknownKindFilter(t *testing.T) {
	uc := newUsecase(t)

	bad := journaldomain.EntryKind("snack")
	_, _, err := uc.ListEntries("u1", &bad, 10, 0)
	assert.Error(t, err)
}
