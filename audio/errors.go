// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrCycleDetected is returned when adding a component to a mixer
	// would create a loop in the graph.
	ErrCycleDetected = errors.New("component addition would create a cycle")

	// ErrNotSupported is returned for operations the underlying
	// provider cannot perform, such as seeking a live stream.
	ErrNotSupported = errors.New("operation not supported by provider")

	// ErrInvalidArgument is returned for out-of-domain parameters:
	// non-positive playback speed, or a loop end before the loop start.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDstSize is returned when a destination buffer length is
	// not a multiple of the channel count.
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
)
