// Package apierr defines a closed set of failure categories that build
// tools and the online services map to distinct outcomes (fail the build,
// fail startup, return invalid-argument, etc). Wrapping an error in a
// *Error lets callers recover the Kind with errors.As instead of matching
// on message text.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories recognized across this system.
type Kind int

const (
	// ParseError is malformed OSM input or a malformed blob.
	ParseError Kind = iota
	// OutOfRange is an edge_idx >= |edges| in a route request.
	OutOfRange
	// NotLoaded is a handler invoked before its backing blobs are loaded.
	NotLoaded
	// DeadlineExceeded is a per-request timer firing mid-search.
	DeadlineExceeded
	// IOError is a missing or unreadable file.
	IOError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse_error"
	case OutOfRange:
		return "out_of_range"
	case NotLoaded:
		return "not_loaded"
	case DeadlineExceeded:
		return "deadline_exceeded"
	case IOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// Error associates a Kind with an underlying error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches kind to err. Wrap(kind, nil) returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
