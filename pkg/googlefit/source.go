package googlefit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/fitness/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	syncdomain "migralog-backend/internal/sync/domain"
)

// Source reads activity sessions from the Google Fit REST API. It implements
// the sync engine's HealthSource contract for the activity record type;
// other record types are not represented in Fit sessions and read empty.
type Source struct {
	endpoint string // overrides the API base URL, for tests
}

func NewSource() *Source {
	return &Source{}
}

// RecordTypeActivity is the only record type this source serves
const RecordTypeActivity = "activity"

// changeToken anchors the session feed at a point in time. Sessions started
// after the anchor are treated as changes; the page field continues a
// partially-read listing.
type changeToken struct {
	Anchor time.Time `json:"anchor"`
	Page   string    `json:"page,omitempty"`
}

func encodeToken(t changeToken) string {
	raw, _ := json.Marshal(t)
	return string(raw)
}

func decodeToken(s string) (changeToken, error) {
	var t changeToken
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return changeToken{}, err
	}
	return t, nil
}

func (s *Source) service(ctx context.Context, accessToken string) (*fitness.Service, error) {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithTokenSource(source)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := fitness.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Fitness service: %v", err)
	}
	return svc, nil
}

// ReadRecords lists all sessions in the window
func (s *Source) ReadRecords(ctx context.Context, accessToken, recordType string, from, to time.Time) ([]syncdomain.Record, error) {
	if recordType != RecordTypeActivity {
		return nil, nil
	}

	svc, err := s.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var records []syncdomain.Record
	pageToken := ""
	for {
		call := svc.Users.Sessions.List("me").
			StartTime(from.UTC().Format(time.RFC3339)).
			EndTime(to.UTC().Format(time.RFC3339))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, classifyError(err)
		}

		for _, session := range resp.Session {
			records = append(records, sessionToRecord(session))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return records, nil
}

// ChangesToken anchors the feed at now
func (s *Source) ChangesToken(ctx context.Context, accessToken, recordType string) (string, error) {
	return encodeToken(changeToken{Anchor: time.Now().UTC()}), nil
}

// Changes lists sessions started since the token's anchor, including deleted
// session tombstones. Tokens that cannot be decoded are reported as expired
// so the caller re-anchors instead of failing the run.
func (s *Source) Changes(ctx context.Context, accessToken, token string) (*syncdomain.ChangesPage, error) {
	anchor, err := decodeToken(token)
	if err != nil {
		return &syncdomain.ChangesPage{TokenExpired: true}, nil
	}

	svc, err := s.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	// Taken before the request so sessions created while it is in flight
	// land after the next anchor instead of in the gap between response
	// and now.
	advanceTo := time.Now().UTC()

	call := svc.Users.Sessions.List("me").
		StartTime(anchor.Anchor.Format(time.RFC3339)).
		IncludeDeleted(true)
	if anchor.Page != "" {
		call = call.PageToken(anchor.Page)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			// Stale page tokens surface as 400
			return &syncdomain.ChangesPage{TokenExpired: true}, nil
		}
		return nil, classifyError(err)
	}

	page := &syncdomain.ChangesPage{}
	for _, session := range resp.Session {
		record := sessionToRecord(session)
		page.Changes = append(page.Changes, syncdomain.Change{Record: &record})
	}
	for _, deleted := range resp.DeletedSession {
		page.Changes = append(page.Changes, syncdomain.Change{DeletedID: deleted.Id})
	}

	if resp.NextPageToken != "" {
		page.HasMore = true
		page.NextToken = encodeToken(changeToken{Anchor: anchor.Anchor, Page: resp.NextPageToken})
	} else {
		// Advance the anchor past everything we just read
		page.NextToken = encodeToken(changeToken{Anchor: advanceTo})
	}
	return page, nil
}

// ReadRecord looks a session up by ID by scanning a bounded window back from
// now. The sessions API has no point lookup.
func (s *Source) ReadRecord(ctx context.Context, accessToken, recordType, id string) (*syncdomain.Record, error) {
	if recordType != RecordTypeActivity {
		return nil, nil
	}

	svc, err := s.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -90)
	pageToken := ""
	for {
		call := svc.Users.Sessions.List("me").
			StartTime(from.Format(time.RFC3339)).
			EndTime(to.Format(time.RFC3339))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, classifyError(err)
		}

		for _, session := range resp.Session {
			if session.Id == id {
				record := sessionToRecord(session)
				return &record, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil, nil
		}
	}
}

func sessionToRecord(session *fitness.Session) syncdomain.Record {
	start := time.UnixMilli(session.StartTimeMillis).UTC()
	end := time.UnixMilli(session.EndTimeMillis).UTC()

	return syncdomain.Record{
		ID:         session.Id,
		Type:       RecordTypeActivity,
		RecordedAt: start,
		Fields: map[string]interface{}{
			"activity_type": activityName(session.ActivityType),
			"duration_min":  end.Sub(start).Minutes(),
			"name":          session.Name,
		},
	}
}

func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden {
		return syncdomain.ErrPermissionDenied
	}
	return err
}

// activityName maps the Fit activity type codes the app cares about; the
// rest fall through to a numeric label
func activityName(code int64) string {
	names := map[int64]string{
		7:  "walking",
		8:  "running",
		1:  "biking",
		82: "swimming",
		97: "weightlifting",
		72: "sleep",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return fmt.Sprintf("activity_%d", code)
}
