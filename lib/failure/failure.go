// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
)

// Category classifies a failure for programmatic handling by the caller.
type Category string

const (
	// CategoryValidation means the request was rejected before any I/O:
	// a path outside the storage root, a malformed URL, an oversized or
	// unrecognized payload, a malformed id. Retrying with corrected
	// input can succeed.
	CategoryValidation Category = "validation"

	// CategoryNotFound means a referenced record does not exist. Delete
	// never produces it; a missing id on delete is a benign no-op.
	CategoryNotFound Category = "not_found"

	// CategoryForbidden means the caller invoked an action outside its
	// granted capability set.
	CategoryForbidden Category = "forbidden"

	// CategoryIO means the filesystem refused an operation: disk full,
	// permission denied, a failed rename, a payload whose digest no
	// longer matches its record.
	CategoryIO Category = "io"

	// CategoryPartialLoad means a load returned a subset of the board
	// because some records could not be read.
	CategoryPartialLoad Category = "partial_load"

	// CategoryInternal means an unexpected failure, including a handler
	// panic recovered by the socket server.
	CategoryInternal Category = "internal"
)

// Error is a categorized error. It wraps an inner error so that
// errors.Is and errors.As still see the original cause (for example
// os.ErrNotExist or a *fs.PathError).
type Error struct {
	Category Category
	Err      error
}

// Error returns the underlying message. The category travels separately
// in the socket response envelope.
func (e *Error) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation failure.
func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found failure.
func NotFound(format string, args ...any) *Error {
	return &Error{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden failure.
func Forbidden(format string, args ...any) *Error {
	return &Error{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// IO creates an I/O failure. Include the operation and path in the
// message; the caller shows it to the user as is.
func IO(format string, args ...any) *Error {
	return &Error{Category: CategoryIO, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal failure.
func Internal(format string, args ...any) *Error {
	return &Error{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of the first *Error in err's chain,
// or CategoryInternal if there is none. A nil error has no category.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}
	return CategoryInternal
}

// Is reports whether err carries the given category.
func Is(err error, category Category) bool {
	return err != nil && CategoryOf(err) == category
}
