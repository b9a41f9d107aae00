package notion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseID accepts a Notion object ID with or without dashes and returns it
// in canonical dashed form.
func ParseID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("empty id")
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid id %q", id)
	}
	return u.String(), nil
}
