package domain

import "time"

// EntryKind is the category of a logged record.
type EntryKind string

const (
	KindMigraine EntryKind = "migraine"
	KindTrigger  EntryKind = "trigger"
	KindProdrome EntryKind = "prodrome"
	KindMedicine EntryKind = "medicine"
	KindRelief   EntryKind = "relief"
	KindActivity EntryKind = "activity"
	KindLocation EntryKind = "location"
)

// Known returns whether the kind is one the app tracks.
func (k EntryKind) Known() bool {
	switch k {
	case KindMigraine, KindTrigger, KindProdrome, KindMedicine, KindRelief, KindActivity, KindLocation:
		return true
	}
	return false
}

// Entry is one user-logged record: a migraine episode, a trigger exposure,
// a prodrome symptom, a medicine intake, a relief attempt, an activity or a
// location visit.
type Entry struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	UserID    string     `json:"user_id" gorm:"index:idx_entry_user_kind;not null"`
	Kind      EntryKind  `json:"kind" gorm:"index:idx_entry_user_kind;size:16;not null"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	PainLevel *int       `json:"pain_level,omitempty"` // migraines only, 0-10
	StartedAt time.Time  `json:"started_at" gorm:"index;not null"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Notes     string     `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
