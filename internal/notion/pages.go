package notion

import (
	"context"
	"encoding/json"
	"net/http"
)

// Parent identifies where a new page is created. Exactly one field is set.
type Parent struct {
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// SearchParams are the body of a search request. An empty Filter searches
// pages and databases alike.
type SearchParams struct {
	Query  string
	Filter string
}

// Search runs a title search over everything the integration can see.
func (c *Client) Search(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	body := map[string]any{
		"query": p.Query,
	}
	if p.Filter != "" {
		body["filter"] = map[string]any{
			"property": "object",
			"value":    p.Filter,
		}
	}
	return c.do(ctx, http.MethodPost, "/search", body)
}

// CreatePage creates a page under parent with the given property values.
// A nil properties map is sent as an empty object.
func (c *Client) CreatePage(ctx context.Context, parent Parent, properties map[string]any) (json.RawMessage, error) {
	if properties == nil {
		properties = map[string]any{}
	}
	body := map[string]any{
		"parent":     parent,
		"properties": properties,
	}
	return c.do(ctx, http.MethodPost, "/pages", body)
}

// UpdatePageProperties patches property values on an existing page.
func (c *Client) UpdatePageProperties(ctx context.Context, pageID string, properties map[string]any) (json.RawMessage, error) {
	if properties == nil {
		properties = map[string]any{}
	}
	body := map[string]any{
		"properties": properties,
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, body)
}

// ArchivePage moves a page to the trash by setting archived=true.
func (c *Client) ArchivePage(ctx context.Context, pageID string) (json.RawMessage, error) {
	body := map[string]any{
		"archived": true,
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, body)
}

// QueryDatabase lists the rows of a database. Sorts are forwarded as-is and
// omitted when empty. Only the first page of results is returned.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, sorts []json.RawMessage) (json.RawMessage, error) {
	body := map[string]any{}
	if len(sorts) > 0 {
		body["sorts"] = sorts
	}
	return c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", body)
}
