package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notion-mcp/internal/notion"
	"notion-mcp/internal/tools"
)

const testID = "59833787-2cf9-4fdf-8782-e53db20768a5"

// fakeNotion answers every request with a small page object, or with a
// Notion error object when fail is set.
func fakeNotion(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`)
			return
		}
		_, _ = io.WriteString(w, `{"object":"page","id":"`+testID+`","path":"`+r.URL.Path+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, fail bool) *Server {
	t.Helper()
	backend := notion.New(notion.Options{BaseURL: fakeNotion(t, fail).URL, APIKey: "secret"})
	registry := tools.NewRegistry(backend, tools.Options{Prefix: tools.DefaultPrefix})
	return New(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, registry)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestInfoIsStable(t *testing.T) {
	s := newTestServer(t, false)
	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		rr := httptest.NewRecorder()
		s.Router().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		bodies = append(bodies, rr.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses differ:\n%s\n%s", bodies[0], bodies[1])
	}

	var info Info
	if err := json.Unmarshal([]byte(bodies[0]), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := Info{Name: "Notion MCP Server", Version: "1.0.0", Protocol: "mcp", Capabilities: Capabilities{Tools: true}}
	if info != want {
		t.Fatalf("info = %+v, want %+v", info, want)
	}
}

type listedTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func TestListTools(t *testing.T) {
	s := newTestServer(t, false)
	rr := postJSON(t, s, "/api/tools/list", map[string]any{})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Tools []listedTool `json:"tools"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := []string{
		"notion_search_pages", "notion_create_page", "notion_append_blocks", "notion_query_database",
		"notion_create_database_row", "notion_update_page", "notion_get_block_children", "notion_archive_page",
	}
	if len(resp.Tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(resp.Tools), len(want))
	}
	for i, tool := range resp.Tools {
		if tool.Name != want[i] {
			t.Errorf("tool %d = %q, want %q", i, tool.Name, want[i])
		}
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %q schema = %v", tool.Name, tool.InputSchema)
		}
	}
}

func TestCallEveryTool(t *testing.T) {
	s := newTestServer(t, false)
	calls := map[string]map[string]any{
		"notion_search_pages":        {},
		"notion_create_page":         {"parent_id": testID, "title": "Notes"},
		"notion_append_blocks":       {"block_id": testID, "children": []any{}},
		"notion_query_database":      {"database_id": testID},
		"notion_create_database_row": {"database_id": testID, "properties": []any{}},
		"notion_update_page":         {"page_id": testID},
		"notion_get_block_children":  {"block_id": testID},
		"notion_archive_page":        {"page_id": testID},
	}
	for name, args := range calls {
		t.Run(name, func(t *testing.T) {
			rr := postJSON(t, s, "/api/tools/call", map[string]any{"name": name, "arguments": args})
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(resp.Content) != 1 || resp.Content[0].Type != "text" {
				t.Fatalf("content = %+v", resp.Content)
			}
			var inner map[string]any
			if err := json.Unmarshal([]byte(resp.Content[0].Text), &inner); err != nil {
				t.Fatalf("content text is not JSON: %v", err)
			}
			if inner["object"] != "page" {
				t.Fatalf("inner = %v", inner)
			}
		})
	}
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(t, false)
	for _, body := range []map[string]any{
		{"name": "notion_drop_database", "arguments": map[string]any{"database_id": testID}},
		{"name": "search_pages"},
		{"arguments": map[string]any{"query": "x"}},
	} {
		rr := postJSON(t, s, "/api/tools/call", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Unknown tool"}` {
			t.Fatalf("body = %s", got)
		}
	}
}

func TestCallUnknownToolIgnoresArgumentShape(t *testing.T) {
	s := newTestServer(t, false)
	for _, raw := range []string{
		`{"name":"bogus","arguments":"x"}`,
		`{"name":"bogus","arguments":[1]}`,
		`{"name":"bogus","arguments":42}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/tools/call", strings.NewReader(raw))
		rr := httptest.NewRecorder()
		s.Router().ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", raw, rr.Code)
		}
		if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Unknown tool"}` {
			t.Fatalf("%s: body = %s", raw, got)
		}
	}
}

func TestCallNonObjectArgumentsForKnownTool(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/tools/call", strings.NewReader(`{"name":"notion_search_pages","arguments":"x"}`))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Error != "invalid arguments: arguments must be an object" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestCallNullArguments(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/tools/call", strings.NewReader(`{"name":"notion_search_pages","arguments":null}`))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCallInvalidArguments(t *testing.T) {
	s := newTestServer(t, false)
	rr := postJSON(t, s, "/api/tools/call", map[string]any{"name": "notion_archive_page", "arguments": map[string]any{}})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !strings.Contains(resp.Error, "page_id is required") {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestCallInvalidJSON(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/tools/call", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCallBackendError(t *testing.T) {
	s := newTestServer(t, true)
	rr := postJSON(t, s, "/api/tools/call", map[string]any{"name": "notion_search_pages", "arguments": map[string]any{"query": "x"}})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"API token is invalid."}` {
		t.Fatalf("body = %s", got)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/tools/call", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Fatalf("Access-Control-Allow-Headers = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/tools/call", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type, x-client-trace")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "content-type, x-client-trace" {
		t.Fatalf("Access-Control-Allow-Headers = %q, want requested headers echoed", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://example.com")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
