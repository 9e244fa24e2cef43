package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"NotesNexus/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.NotionConfig{
		BaseURL:       serverURL,
		Token:         "secret",
		DatabaseID:    "db1",
		TitleProperty: "Name",
	})
}

func TestFetchAllPaginates(t *testing.T) {
	t.Parallel()

	pageOne := `{
		"results": [{
			"id": "a1",
			"created_time": "2024-01-01T00:00:00Z",
			"last_edited_time": "2024-01-02T00:00:00Z",
			"properties": {"Name": {"title": [{"plain_text": "hello "}, {"plain_text": "world"}]}}
		}],
		"has_more": true,
		"next_cursor": "cur2"
	}`
	pageTwo := `{
		"results": [{
			"id": "b2",
			"created_time": "2024-01-03T00:00:00Z",
			"last_edited_time": "not a timestamp",
			"properties": {"Name": {"title": []}}
		}],
		"has_more": false,
		"next_cursor": null
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/db1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Notion-Version"); got != apiVersion {
			t.Errorf("missing api version header, got %q", got)
		}

		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["start_cursor"] == "cur2" {
			_, _ = w.Write([]byte(pageTwo))
			return
		}
		_, _ = w.Write([]byte(pageOne))
	}))
	defer server.Close()

	records, err := newTestClient(server.URL).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records across pages, got %d", len(records))
	}
	if records[0].ID != "a1" || records[0].Content != "hello world" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[0].UpdatedAt.IsZero() {
		t.Fatal("expected parsed last_edited_time")
	}
	if !records[1].UpdatedAt.IsZero() {
		t.Fatal("malformed timestamp should degrade to zero time")
	}
}

func TestArchive(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/v1/pages/a1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["archived"] != true {
			t.Errorf("expected archived=true, got %v", payload)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ok, err := newTestClient(server.URL).Archive(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected archive success")
	}
}

func TestArchiveFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	ok, err := newTestClient(server.URL).Archive(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error for failed archive")
	}
	if ok {
		t.Fatal("failed archive must not report success")
	}
}
