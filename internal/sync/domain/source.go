package domain

import (
	"context"
	"errors"
	"time"
)

// ErrPermissionDenied means the user has not granted (or has revoked) access
// to the record type. Retrying does not help; the sync job must stop and wait
// for user action.
var ErrPermissionDenied = errors.New("health source permission not granted")

// Record is one health record as read from the source, keyed by a stable id.
type Record struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	RecordedAt time.Time              `json:"recorded_at"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Change is one entry of a changes page: either an upserted record or a
// deletion tombstone carrying only the record id.
type Change struct {
	Record    *Record `json:"record,omitempty"`
	DeletedID string  `json:"deleted_id,omitempty"`
}

// IsDeletion reports whether the change is a tombstone.
func (c Change) IsDeletion() bool {
	return c.Record == nil && c.DeletedID != ""
}

// ChangesPage is one page of the source's incremental change feed.
type ChangesPage struct {
	Changes      []Change `json:"changes"`
	NextToken    string   `json:"next_token"`
	HasMore      bool     `json:"has_more"`
	TokenExpired bool     `json:"token_expired"`
}

// HealthSource is the read side of a health data provider. Implementations
// wrap the provider's HTTP API; the engine never sees transport details.
type HealthSource interface {
	// ReadRecords reads all records of a type in a time range (backfill).
	ReadRecords(ctx context.Context, accessToken, recordType string, from, to time.Time) ([]Record, error)
	// ChangesToken mints a fresh continuation token anchored at now.
	ChangesToken(ctx context.Context, accessToken, recordType string) (string, error)
	// Changes reads one page of the change feed starting at token.
	Changes(ctx context.Context, accessToken, token string) (*ChangesPage, error)
	// ReadRecord resolves the current content of a single record, or nil if
	// the record no longer exists at the source.
	ReadRecord(ctx context.Context, accessToken, recordType, id string) (*Record, error)
}

// TokenProvider produces a valid bearer token for a user's health source
// connection, refreshing it if necessary. An empty token with a nil error
// means the connection is temporarily unusable and the caller should retry
// later.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
}
