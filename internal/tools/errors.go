package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when a call names no registered tool.
	// No backing call is made.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when arguments do not satisfy the
	// tool's input schema. No backing call is made.
	ErrInvalidArguments = errors.New("invalid arguments")
)

func invalidArgument(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArguments, name, fmt.Sprintf(format, args...))
}
