package xyz

import (
	"errors"
	"fmt"
)

// Domain errors for trajectory parsing.
var (
	// ErrParse indicates a token that should be numeric is not, or a line
	// that is too short for its kind.
	ErrParse = errors.New("xyz: malformed numeric field")

	// ErrUnknownSymbol indicates an atom line whose element label is not in
	// the configured symbol set.
	ErrUnknownSymbol = errors.New("xyz: element symbol not in allow-list")

	// ErrDesync indicates fewer energy values than structural frames.
	ErrDesync = errors.New("xyz: energy values out of step with frames")
)

// LineError wraps an error with its position in the source file.
type LineError struct {
	File    string
	Line    int
	Text    string
	Wrapped error
}

func (e *LineError) Error() string {
	name := e.File
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d: %v (%q)", name, e.Line, e.Wrapped, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Wrapped
}
