package healthapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "migralog-backend/internal/sync/domain"
)

func TestReadRecordsPassesWindowAndAuth(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Write([]byte(`[{"id":"r1","type":"nutrition","recorded_at":"2026-08-30T10:00:00Z","fields":{"calories":250}}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	from := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	records, err := client.ReadRecords(context.Background(), "tok", "nutrition", from, to)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, float64(250), records[0].Fields["calories"])
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "nutrition", gotQuery["type"][0])
	assert.Equal(t, "2026-08-17T00:00:00Z", gotQuery["from"][0])
}

func TestChangesDecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"changes": [
				{"record": {"id": "r1", "type": "activity", "recorded_at": "2026-08-30T10:00:00Z", "fields": {}}},
				{"deleted_id": "r2"}
			],
			"next_token": "t2",
			"has_more": true
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	page, err := client.Changes(context.Background(), "tok", "t1")

	require.NoError(t, err)
	require.Len(t, page.Changes, 2)
	assert.False(t, page.Changes[0].IsDeletion())
	assert.True(t, page.Changes[1].IsDeletion())
	assert.Equal(t, "r2", page.Changes[1].DeletedID)
	assert.Equal(t, "t2", page.NextToken)
	assert.True(t, page.HasMore)
	assert.False(t, page.TokenExpired)
}

func TestChangesExpiredTokenIsReportedNotErrored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	page, err := client.Changes(context.Background(), "tok", "stale")

	require.NoError(t, err)
	assert.True(t, page.TokenExpired)
}

func TestForbiddenMapsToPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.ReadRecords(context.Background(), "tok", "nutrition", time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, syncdomain.ErrPermissionDenied)

	_, err = client.Changes(context.Background(), "tok", "t1")
	assert.ErrorIs(t, err, syncdomain.ErrPermissionDenied)
}

func TestReadRecordNotFoundReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	record, err := client.ReadRecord(context.Background(), "tok", "nutrition", "gone")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestChangesTokenRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "activity", r.URL.Query().Get("type"))
		w.Write([]byte(`{"token":"anchor-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	token, err := client.ChangesToken(context.Background(), "tok", "activity")

	require.NoError(t, err)
	assert.Equal(t, "anchor-1", token)
}
