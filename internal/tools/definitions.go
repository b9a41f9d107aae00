package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"notion-mcp/internal/notion"
)

type definition struct {
	name        string
	description string
	options     []mcp.ToolOption
	call        callFunc
}

var propertyItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "description": "Property name as it appears in the database"},
		"type": map[string]any{
			"type":        "string",
			"description": "title, rich_text, number, select, multi_select, date, checkbox or url; anything else is sent as rich_text",
		},
		"value": map[string]any{"type": "string", "description": "Raw value; multi_select is comma separated, checkbox is \"True\" when set"},
	},
	"required": []string{"name", "type", "value"},
}

var definitions = [numKinds]definition{
	SearchPages: {
		name:        "search_pages",
		description: "Search Notion pages and databases by title",
		options: []mcp.ToolOption{
			mcp.WithString("query", mcp.Description("Search query")),
			mcp.WithString("filter_value", mcp.Description("Restrict results to one object kind"), mcp.Enum("page", "database")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		},
		call: bind(searchPages),
	},
	CreatePage: {
		name:        "create_page",
		description: "Create a new Notion page",
		options: []mcp.ToolOption{
			mcp.WithString("parent_id", mcp.Required(), mcp.Description("Parent page ID")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
			mcp.WithDestructiveHintAnnotation(false),
		},
		call: bind(createPage),
	},
	AppendBlocks: {
		name:        "append_blocks",
		description: "Append content blocks to a page",
		options: []mcp.ToolOption{
			mcp.WithString("block_id", mcp.Required(), mcp.Description("Page or block ID")),
			mcp.WithArray("children", mcp.Required(), mcp.Description("Array of block objects"), mcp.Items(map[string]any{"type": "object"})),
			mcp.WithDestructiveHintAnnotation(false),
		},
		call: bind(appendBlocks),
	},
	QueryDatabase: {
		name:        "query_database",
		description: "Query a Notion database",
		options: []mcp.ToolOption{
			mcp.WithString("database_id", mcp.Required(), mcp.Description("Database ID")),
			mcp.WithArray("sorts", mcp.Description("Sort configuration"), mcp.Items(map[string]any{"type": "object"})),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		},
		call: bind(queryDatabase),
	},
	CreateDatabaseRow: {
		name:        "create_database_row",
		description: "Create a new row in a database",
		options: []mcp.ToolOption{
			mcp.WithString("database_id", mcp.Required(), mcp.Description("Database ID")),
			mcp.WithArray("properties", mcp.Required(), mcp.Description("Row properties"), mcp.Items(propertyItems)),
			mcp.WithDestructiveHintAnnotation(false),
		},
		call: bind(createDatabaseRow),
	},
	UpdatePage: {
		name:        "update_page",
		description: "Update a Notion page or database row",
		options: []mcp.ToolOption{
			mcp.WithString("page_id", mcp.Required(), mcp.Description("Page ID to update")),
			mcp.WithArray("properties", mcp.Description("Properties to update"), mcp.Items(propertyItems)),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		},
		call: bind(updatePage),
	},
	GetBlockChildren: {
		name:        "get_block_children",
		description: "Get child blocks of a page or block",
		options: []mcp.ToolOption{
			mcp.WithString("block_id", mcp.Required(), mcp.Description("Parent block ID")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
		},
		call: bind(getBlockChildren),
	},
	ArchivePage: {
		name:        "archive_page",
		description: "Archive (delete) a Notion page",
		options: []mcp.ToolOption{
			mcp.WithString("page_id", mcp.Required(), mcp.Description("Page ID to archive")),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
		},
		call: bind(archivePage),
	},
}

func parseID(arg, v string) (string, error) {
	id, err := notion.ParseID(v)
	if err != nil {
		return "", invalidArgument(arg, "is not a valid Notion ID: %v", err)
	}
	return id, nil
}

type searchArgs struct {
	Query       string `json:"query"`
	FilterValue string `json:"filter_value"`
}

func searchPages(ctx context.Context, b Backend, a searchArgs) (json.RawMessage, error) {
	return b.Search(ctx, notion.SearchParams{Query: a.Query, Filter: a.FilterValue})
}

type createPageArgs struct {
	ParentID string `json:"parent_id"`
	Title    string `json:"title"`
}

func createPage(ctx context.Context, b Backend, a createPageArgs) (json.RawMessage, error) {
	parentID, err := parseID("parent_id", a.ParentID)
	if err != nil {
		return nil, err
	}
	props := BuildProperties([]PropertySpec{{Name: "title", Type: "title", Value: a.Title}})
	return b.CreatePage(ctx, notion.Parent{PageID: parentID}, props)
}

type appendBlocksArgs struct {
	BlockID  string            `json:"block_id"`
	Children []json.RawMessage `json:"children"`
}

func appendBlocks(ctx context.Context, b Backend, a appendBlocksArgs) (json.RawMessage, error) {
	blockID, err := parseID("block_id", a.BlockID)
	if err != nil {
		return nil, err
	}
	return b.AppendBlockChildren(ctx, blockID, a.Children)
}

type queryDatabaseArgs struct {
	DatabaseID string            `json:"database_id"`
	Sorts      []json.RawMessage `json:"sorts"`
}

func queryDatabase(ctx context.Context, b Backend, a queryDatabaseArgs) (json.RawMessage, error) {
	databaseID, err := parseID("database_id", a.DatabaseID)
	if err != nil {
		return nil, err
	}
	return b.QueryDatabase(ctx, databaseID, a.Sorts)
}

type createDatabaseRowArgs struct {
	DatabaseID string         `json:"database_id"`
	Properties []PropertySpec `json:"properties"`
}

func createDatabaseRow(ctx context.Context, b Backend, a createDatabaseRowArgs) (json.RawMessage, error) {
	databaseID, err := parseID("database_id", a.DatabaseID)
	if err != nil {
		return nil, err
	}
	return b.CreatePage(ctx, notion.Parent{DatabaseID: databaseID}, BuildProperties(a.Properties))
}

type updatePageArgs struct {
	PageID     string         `json:"page_id"`
	Properties []PropertySpec `json:"properties"`
}

func updatePage(ctx context.Context, b Backend, a updatePageArgs) (json.RawMessage, error) {
	pageID, err := parseID("page_id", a.PageID)
	if err != nil {
		return nil, err
	}
	return b.UpdatePageProperties(ctx, pageID, BuildProperties(a.Properties))
}

type blockArgs struct {
	BlockID string `json:"block_id"`
}

func getBlockChildren(ctx context.Context, b Backend, a blockArgs) (json.RawMessage, error) {
	blockID, err := parseID("block_id", a.BlockID)
	if err != nil {
		return nil, err
	}
	return b.ListBlockChildren(ctx, blockID)
}

type pageArgs struct {
	PageID string `json:"page_id"`
}

func archivePage(ctx context.Context, b Backend, a pageArgs) (json.RawMessage, error) {
	pageID, err := parseID("page_id", a.PageID)
	if err != nil {
		return nil, err
	}
	return b.ArchivePage(ctx, pageID)
}
