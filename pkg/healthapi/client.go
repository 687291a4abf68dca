package healthapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
)

// Client reads records and change feeds from the health platform's REST API.
// It implements the sync engine's HealthSource contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type recordPayload struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	RecordedAt time.Time              `json:"recorded_at"`
	Fields     map[string]interface{} `json:"fields"`
}

type changesPayload struct {
	Changes []struct {
		Record    *recordPayload `json:"record,omitempty"`
		DeletedID string         `json:"deleted_id,omitempty"`
	} `json:"changes"`
	NextToken string `json:"next_token"`
	HasMore   bool   `json:"has_more"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

// ReadRecords fetches all records of a type in the given time window
func (c *Client) ReadRecords(ctx context.Context, accessToken, recordType string, from, to time.Time) ([]syncdomain.Record, error) {
	query := url.Values{}
	query.Set("type", recordType)
	query.Set("from", from.UTC().Format(time.RFC3339))
	query.Set("to", to.UTC().Format(time.RFC3339))

	body, err := c.get(ctx, accessToken, "/v1/records?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var payload []recordPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	records := make([]syncdomain.Record, 0, len(payload))
	for _, p := range payload {
		records = append(records, syncdomain.Record{
			ID:         p.ID,
			Type:       p.Type,
			RecordedAt: p.RecordedAt,
			Fields:     p.Fields,
		})
	}
	return records, nil
}

// ChangesToken mints a change-feed anchor for the current point in time
func (c *Client) ChangesToken(ctx context.Context, accessToken, recordType string) (string, error) {
	query := url.Values{}
	query.Set("type", recordType)

	body, err := c.get(ctx, accessToken, "/v1/changes-token?"+query.Encode())
	if err != nil {
		return "", err
	}

	var payload tokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	return payload.Token, nil
}

// Changes fetches one page of the change feed starting at token. An expired
// token is reported through the page rather than as an error so the caller
// can re-anchor.
func (c *Client) Changes(ctx context.Context, accessToken, token string) (*syncdomain.ChangesPage, error) {
	query := url.Values{}
	query.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/changes?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch changes: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusGone:
		// The platform expires change tokens after a retention window
		return &syncdomain.ChangesPage{TokenExpired: true}, nil
	case http.StatusForbidden:
		return nil, syncdomain.ErrPermissionDenied
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch changes: status %d: %s", resp.StatusCode, string(body))
	}

	var payload changesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}

	page := &syncdomain.ChangesPage{
		NextToken: payload.NextToken,
		HasMore:   payload.HasMore,
	}
	for _, ch := range payload.Changes {
		change := syncdomain.Change{DeletedID: ch.DeletedID}
		if ch.Record != nil {
			change.Record = &syncdomain.Record{
				ID:         ch.Record.ID,
				Type:       ch.Record.Type,
				RecordedAt: ch.Record.RecordedAt,
				Fields:     ch.Record.Fields,
			}
		}
		page.Changes = append(page.Changes, change)
	}
	return page, nil
}

// ReadRecord fetches a single record by ID, returning nil when the record
// no longer exists on the platform
func (c *Client) ReadRecord(ctx context.Context, accessToken, recordType, id string) (*syncdomain.Record, error) {
	path := fmt.Sprintf("/v1/records/%s/%s", url.PathEscape(recordType), url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	case http.StatusForbidden:
		return nil, syncdomain.ErrPermissionDenied
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch record: status %d: %s", resp.StatusCode, string(body))
	}

	var payload recordPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &syncdomain.Record{
		ID:         payload.ID,
		Type:       payload.Type,
		RecordedAt: payload.RecordedAt,
		Fields:     payload.Fields,
	}, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, syncdomain.ErrPermissionDenied
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("request %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
