// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	goaiff "github.com/go-audio/aiff"

	"github.com/ik5/audmix/audio"
)

// Decoder decodes AIFF files into fully seekable in-memory providers.
type Decoder struct{}

// Decode reads the whole file and returns a provider over its PCM data.
// go-audio needs an io.ReadSeeker; plain readers are buffered first.
func (Decoder) Decode(r io.Reader) (audio.Provider, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := goaiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding aiff: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, ErrNotAiffFile
	}

	scale := pcmScale(int(dec.BitDepth))
	if scale == 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return audio.NewBufferProvider(samples, buf.Format.SampleRate, buf.Format.NumChannels), nil
}

// pcmScale maps a PCM bit depth to its normalization divisor, zero for
// unsupported depths.
func pcmScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128
	case 16:
		return 32768
	case 24:
		return 8388608
	case 32:
		return 2147483648
	}
	return 0
}
