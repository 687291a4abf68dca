package googlefit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitServer(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Source{endpoint: server.URL + "/"}
}

func anchorOf(t *testing.T, token string) changeToken {
	t.Helper()
	decoded, err := decodeToken(token)
	require.NoError(t, err)
	return decoded
}

func TestChangesDecodesSessionsAndTombstones(t *testing.T) {
	src := fitServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session": [
				{"id": "s1", "name": "Morning run", "activityType": 8,
				 "startTimeMillis": "1756600200000", "endTimeMillis": "1756602000000"}
			],
			"deletedSession": [{"id": "s2"}]
		}`))
	})

	token := encodeToken(changeToken{Anchor: time.Now().Add(-time.Hour).UTC()})
	page, err := src.Changes(context.Background(), "tok", token)

	require.NoError(t, err)
	require.Len(t, page.Changes, 2)
	assert.False(t, page.Changes[0].IsDeletion())
	assert.Equal(t, "s1", page.Changes[0].Record.ID)
	assert.Equal(t, "running", page.Changes[0].Record.Fields["activity_type"])
	assert.InDelta(t, 30.0, page.Changes[0].Record.Fields["duration_min"], 0.01)
	assert.True(t, page.Changes[1].IsDeletion())
	assert.Equal(t, "s2", page.Changes[1].DeletedID)
	assert.False(t, page.HasMore)
}

func TestChangesAnchorsBeforeRequest(t *testing.T) {
	var respondedAt time.Time
	src := fitServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		respondedAt = time.Now()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	token := encodeToken(changeToken{Anchor: time.Now().Add(-time.Hour).UTC()})
	page, err := src.Changes(context.Background(), "tok", token)
	require.NoError(t, err)

	// A session created while the request was in flight would carry a
	// start time before respondedAt; the next anchor must not skip past
	// it.
	next := anchorOf(t, page.NextToken)
	assert.True(t, next.Anchor.Before(respondedAt))
}

func TestChangesPaginationKeepsAnchor(t *testing.T) {
	src := fitServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"nextPageToken": "p2"}`))
	})

	anchor := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	page, err := src.Changes(context.Background(), "tok", encodeToken(changeToken{Anchor: anchor}))
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	next := anchorOf(t, page.NextToken)
	assert.Equal(t, anchor, next.Anchor)
	assert.Equal(t, "p2", next.Page)
}

func TestUndecodableTokenReportsExpired(t *testing.T) {
	src := NewSource()

	page, err := src.Changes(context.Background(), "tok", "not-json")
	require.NoError(t, err)
	assert.True(t, page.TokenExpired)
}

func TestStaleTokenReportsExpired(t *testing.T) {
	src := fitServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid pageToken"}}`))
	})

	token := encodeToken(changeToken{Anchor: time.Now().UTC(), Page: "stale"})
	page, err := src.Changes(context.Background(), "tok", token)

	require.NoError(t, err)
	assert.True(t, page.TokenExpired)
}
