package main

import (
	"errors"
	"fmt"
)

var (
	ErrResourceUnavailable = errors.New("catalog resource unavailable")
	ErrDecodeFailure       = errors.New("catalog body could not be decoded")
	ErrMissingMountPoint   = errors.New("container element not found")

	ErrUnknownProject = errors.New("unknown project")
	ErrUnknownSession = errors.New("unknown page session")
	ErrUnknownSite    = errors.New("unknown microsite")
)

// LoadError records which listing failed and why. Kind is one of the
// three loader sentinels above.
type LoadError struct {
	Kind    error
	Listing string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Listing, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Listing, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newLoadError classifies a fetch or render failure of listing.
func newLoadError(listing string, cause error) *LoadError {
	kind := ErrResourceUnavailable
	if errors.Is(cause, ErrDecodeFailure) {
		kind = ErrDecodeFailure
	}
	return &LoadError{Kind: kind, Listing: listing, Err: cause}
}

// failureKind names the loader sentinel wrapped by err, for logs and the
// diagnostics journal.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingMountPoint):
		return "missing_mount_point"
	case errors.Is(err, ErrDecodeFailure):
		return "decode_failure"
	case errors.Is(err, ErrResourceUnavailable):
		return "resource_unavailable"
	default:
		return "unknown"
	}
}
