package dto

import (
	"time"

	journaldomain "migralog-backend/internal/journal/domain"
)

type CreateEntryRequest struct {
	Kind      journaldomain.EntryKind `json:"kind" binding:"required"`
	Name      string                  `json:"name" binding:"required"`
	PainLevel *int                    `json:"pain_level,omitempty"`
	StartedAt time.Time               `json:"started_at" binding:"required"`
	EndedAt   *time.Time              `json:"ended_at,omitempty"`
	Notes     string                  `json:"notes,omitempty"`
}

func (r *CreateEntryRequest) ToEntry() *journaldomain.Entry {
	return &journaldomain.Entry{
		Kind:      r.Kind,
		Name:      r.Name,
		PainLevel: r.PainLevel,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		Notes:     r.Notes,
	}
}

type EntriesResponse struct {
	Entries []*journaldomain.Entry `json:"entries"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
	Total   int64                  `json:"total"`
}
