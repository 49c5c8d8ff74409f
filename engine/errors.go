// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates a non-positive sample rate or
	// channel count, or a sample format the converter cannot handle.
	ErrInvalidConfiguration = errors.New("invalid engine configuration")

	// ErrAlreadyInitialized indicates another Engine instance is live in
	// this process. Close it before constructing a new one.
	ErrAlreadyInitialized = errors.New("an engine instance is already live")
)

// BackendError wraps a failure reported by the device backend. Code
// carries the backend's native result code when one exists, zero
// otherwise.
type BackendError struct {
	Op   string
	Code int
	Err  error
}

func (e *BackendError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("backend %s: %v (code %d)", e.Op, e.Err, e.Code)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
