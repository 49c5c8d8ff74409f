// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile indicates the input is not a valid WAV file.
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedBitDepth indicates a PCM bit depth outside 8/16/24/32.
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
)
