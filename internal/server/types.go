package server

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Info is the discovery document served at GET /api.
type Info struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Protocol     string       `json:"protocol"`
	Capabilities Capabilities `json:"capabilities"`
}

type Capabilities struct {
	Tools bool `json:"tools"`
}

// CallRequest is the body of POST /api/tools/call. Args stays undecoded
// until the tool name has been resolved.
type CallRequest struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"arguments"`
}

type ListToolsResponse struct {
	Tools []mcp.Tool `json:"tools"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
