package storage

import (
	"errors"
	"fmt"
)

// Storage error constants
var (
	// ErrNotFound is the generic "not found" error; every entity-specific
	// not-found error wraps it so callers can test with errors.Is.
	ErrNotFound = errors.New("not found")

	ErrCaseNotFound     = fmt.Errorf("case %w", ErrNotFound)
	ErrArtifactNotFound = fmt.Errorf("artifact %w", ErrNotFound)
	ErrStoryNotFound    = fmt.Errorf("story %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	// ErrInvalidRecord is returned when a record fails validation on write
	ErrInvalidRecord = errors.New("invalid record")
)
