package notion

import (
	"context"
	"encoding/json"
	"net/http"
)

// AppendBlockChildren appends children to a page or block. The block
// objects are forwarded without inspection.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []json.RawMessage) (json.RawMessage, error) {
	if children == nil {
		children = []json.RawMessage{}
	}
	body := map[string]any{
		"children": children,
	}
	return c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", body)
}

// ListBlockChildren returns the first page of immediate children of a block.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/blocks/"+blockID+"/children", nil)
}
