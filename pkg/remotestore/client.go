package remotestore

import (
	"bytes"
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

// Client talks to a PostgREST-style REST gateway that fronts the remote
// analytics database. Writes are classified into sync outcomes so the
// sync engine can decide between dropping, retrying, and parking a row.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a remote store client for the given gateway URL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upsert writes a single row into the given table, merging on conflictKey
func (c *Client) Upsert(ctx context.Context, table string, row syncdomain.Row, conflictKey string) syncdomain.Outcome {
	body, err := json.Marshal(row)
	if err != nil {
		return syncdomain.Permanent(fmt.Sprintf("encode row: %v", err))
	}

	endpoint := fmt.Sprintf("%s/%s?on_conflict=%s", c.baseURL, table, url.QueryEscape(conflictKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return syncdomain.Permanent(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")
	c.authorize(req)

	return c.do(req)
}

// Delete removes rows from the given table whose idColumn matches any of ids,
// scoped to the owning user
func (c *Client) Delete(ctx context.Context, table string, idColumn string, ids []string, userID string) syncdomain.Outcome {
	if len(ids) == 0 {
		return syncdomain.Success()
	}

	query := url.Values{}
	query.Set(idColumn, fmt.Sprintf("in.(%s)", strings.Join(ids, ",")))
	query.Set("user_id", "eq."+userID)

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, table, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return syncdomain.Permanent(fmt.Sprintf("build request: %v", err))
	}
	c.authorize(req)

	return c.do(req)
}

// Query fetches rows from the given table matching the equality filters
func (c *Client) Query(ctx context.Context, table string, filters map[string]string) ([]syncdomain.Row, error) {
	query := url.Values{}
	for column, value := range filters {
		query.Set(column, "eq."+value)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, table, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("query %s: status %d: %s", table, resp.StatusCode, string(body))
	}

	var rows []syncdomain.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// do executes a write request and classifies the response.
//
// Classification rules: transport errors, 5xx, and 429 are retryable.
// A 409, or any 4xx whose body mentions a unique violation, means the
// row already landed on a previous delivery and counts as success.
// Every other 4xx will never succeed on retry.
func (c *Client) do(req *http.Request) syncdomain.Outcome {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return syncdomain.Retryable(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return syncdomain.Success()
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return syncdomain.Retryable(message)
	case resp.StatusCode == http.StatusConflict, isDuplicateKey(string(body)):
		return syncdomain.Success()
	default:
		return syncdomain.Permanent(message)
	}
}

func isDuplicateKey(body string) bool {
	return strings.Contains(body, "23505") || strings.Contains(body, "duplicate key")
}
