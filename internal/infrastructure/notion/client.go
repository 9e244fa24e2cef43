// Package notion implements the document-store collaborator against the
// Notion REST API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NotesNexus/internal/config"
	"NotesNexus/internal/domain"
	"NotesNexus/internal/ports"
)

const apiVersion = "2022-06-28"

// Client fetches and archives note pages in one Notion database.
type Client struct {
	baseURL       string
	token         string
	databaseID    string
	titleProperty string
	httpClient    *http.Client
}

var _ ports.RecordSource = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.NotionConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.Token,
		databaseID:    cfg.DatabaseID,
		titleProperty: cfg.TitleProperty,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type queryResponse struct {
	Results    []page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type page struct {
	ID             string                  `json:"id"`
	CreatedTime    string                  `json:"created_time"`
	LastEditedTime string                  `json:"last_edited_time"`
	Properties     map[string]pageProperty `json:"properties"`
}

type pageProperty struct {
	Title []richText `json:"title"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

// FetchAll queries the database, following has_more/next_cursor pagination,
// and flattens each page into a Record. Notion returns pages newest-first.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Record, error) {
	if c.token == "" || c.databaseID == "" {
		return nil, fmt.Errorf("notion client misconfigured")
	}

	var records []domain.Record
	cursor := ""
	for {
		resp, err := c.queryPage(ctx, cursor)
		if err != nil {
			return nil, err
		}
		for _, p := range resp.Results {
			records = append(records, c.toRecord(p))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return records, nil
}

func (c *Client) queryPage(ctx context.Context, cursor string) (*queryResponse, error) {
	payload := map[string]any{}
	if cursor != "" {
		payload["start_cursor"] = cursor
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal query payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("notion query %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return &parsed, nil
}

// Archive marks the page archived at the source. Success is a 200 response.
func (c *Client) Archive(ctx context.Context, id string) (bool, error) {
	body, err := json.Marshal(map[string]any{"archived": true})
	if err != nil {
		return false, fmt.Errorf("marshal archive payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/pages/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("archive page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("notion archive %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return true, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")
}

// toRecord flattens one page: the title-like property's rich-text parts are
// concatenated into the record content, and timestamps parse leniently (a
// malformed timestamp yields the zero time, treated everywhere as "older").
func (c *Client) toRecord(p page) domain.Record {
	var content strings.Builder
	if prop, ok := p.Properties[c.titleProperty]; ok {
		for _, part := range prop.Title {
			content.WriteString(part.PlainText)
		}
	}

	return domain.Record{
		ID:        p.ID,
		CreatedAt: parseTimestamp(p.CreatedTime),
		UpdatedAt: parseTimestamp(p.LastEditedTime),
		Content:   content.String(),
	}
}

func parseTimestamp(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
