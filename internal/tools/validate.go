package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// validateArguments checks args against the subset of JSON Schema the tool
// table declares: required keys, string and array types, string enums.
func validateArguments(schema mcp.ToolInputSchema, args map[string]any) error {
	for _, name := range schema.Required {
		if v, ok := args[name]; !ok || v == nil {
			return invalidArgument(name, "is required")
		}
	}
	for _, name := range slices.Sorted(maps.Keys(schema.Properties)) {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		prop, _ := schema.Properties[name].(map[string]any)
		switch prop["type"] {
		case "string":
			s, ok := v.(string)
			if !ok {
				return invalidArgument(name, "must be a string")
			}
			if enum, ok := prop["enum"].([]string); ok && s != "" && !slices.Contains(enum, s) {
				return invalidArgument(name, "must be one of %s", strings.Join(enum, ", "))
			}
		case "array":
			if _, ok := v.([]any); !ok {
				return invalidArgument(name, "must be an array")
			}
		}
	}
	return nil
}

// argumentObject decodes a raw argument document into a map.
func argumentObject(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, invalidArgument("arguments", "must be an object")
	}
	return args, nil
}

// decodeArguments copies the argument bag into a typed struct.
func decodeArguments(args map[string]any, dst any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidArgument(typeErr.Field, "must be %s", typeErr.Type.Kind())
		}
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
