// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrUnsupportedFormat is returned for sample widths this package
	// cannot convert.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrBufferSize is returned when the destination buffer is too
	// small for the requested conversion.
	ErrBufferSize = errors.New("destination buffer too small")
)
