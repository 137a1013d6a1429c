// Package apperr defines the errors the copy pipeline reports to its callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMultipleArtboards is returned when the selection holds more than one artboard.
	// The target editor accepts at most one canvas per paste.
	ErrMultipleArtboards = errors.New("only one artboard can be copied")
	// ErrUnsupportedMask is returned when a selected clipping mask would need to be
	// flattened outside of a group.
	ErrUnsupportedMask = errors.New("mask is not part of a group")
	// ErrEmptySelection is returned when there is nothing to copy.
	ErrEmptySelection = errors.New("no layers selected")
	// ErrInvalidPayload is returned when the assembled payload breaks a reference invariant.
	ErrInvalidPayload = errors.New("invalid payload")
)

// HostError wraps a failed host operation (duplicate, detach, rasterize, font lookup,
// serialization) together with the layer it was invoked on.
type HostError struct {
	Op      string
	LayerID string
	Err     error
}

// Error implements the error interface.
func (e *HostError) Error() string {
	if e.LayerID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.LayerID, e.Err)
}

// Unwrap returns the underlying host error.
func (e *HostError) Unwrap() error {
	return e.Err
}

// Host wraps err as a HostError. It returns nil when err is nil.
func Host(op, layerID string, err error) error {
	if err == nil {
		return nil
	}
	return &HostError{Op: op, LayerID: layerID, Err: err}
}

// IsUserError reports whether err should be shown to the user as a blocking alert
// rather than treated as an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrMultipleArtboards) || errors.Is(err, ErrUnsupportedMask)
}
