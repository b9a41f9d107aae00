package tools

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PropertySpec is a flat description of one property value as supplied by
// callers of create_database_row and update_page.
type PropertySpec struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FormatProperty converts a PropertySpec into the nested value shape Notion
// expects for its type. Unknown types are sent as rich text.
func FormatProperty(p PropertySpec) map[string]any {
	switch p.Type {
	case "title":
		return map[string]any{"title": richText(p.Value)}
	case "rich_text":
		return map[string]any{"rich_text": richText(p.Value)}
	case "number":
		return map[string]any{"number": parseNumber(p.Value)}
	case "select":
		return map[string]any{"select": map[string]any{"name": p.Value}}
	case "multi_select":
		parts := strings.Split(p.Value, ",")
		options := make([]map[string]any, 0, len(parts))
		for _, part := range parts {
			options = append(options, map[string]any{"name": strings.TrimSpace(part)})
		}
		return map[string]any{"multi_select": options}
	case "date":
		return map[string]any{"date": map[string]any{"start": p.Value}}
	case "checkbox":
		// Only the exact literal "True" is checked.
		return map[string]any{"checkbox": p.Value == "True"}
	case "url":
		return map[string]any{"url": p.Value}
	default:
		return map[string]any{"rich_text": richText(p.Value)}
	}
}

// BuildProperties formats every spec into a property map keyed by name.
// A later spec with the same name replaces an earlier one.
func BuildProperties(specs []PropertySpec) map[string]any {
	props := make(map[string]any, len(specs))
	for _, p := range specs {
		props[p.Name] = FormatProperty(p)
	}
	return props
}

func richText(content string) []map[string]any {
	return []map[string]any{
		{"text": map[string]any{"content": content}},
	}
}

// numberPrefix matches the longest leading decimal literal, so "12abc" reads
// as 12 and "1,000" as 1.
var numberPrefix = regexp.MustCompile(`^[+-]?(Infinity|\d+\.?\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?)`)

// parseNumber reads the numeric prefix of v and returns nil (JSON null) when
// there is none or it is not finite.
func parseNumber(v string) *float64 {
	m := numberPrefix.FindString(strings.TrimSpace(v))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
