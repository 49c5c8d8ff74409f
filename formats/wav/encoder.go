// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/utils"
)

// Encoder writes float32 sample blocks into a 16-bit PCM WAV file. It
// is usable directly as an audio-processed notification sink, writing
// each captured or rendered block as it arrives.
type Encoder struct {
	enc      *gowav.Encoder
	channels int
	buf      *goaudio.IntBuffer
}

// NewEncoder creates a WAV encoder on w. The header is finalized by
// Close; an unclosed encoder leaves an unreadable file.
func NewEncoder(w io.WriteSeeker, sampleRate, channels int) *Encoder {
	return &Encoder{
		enc:      gowav.NewEncoder(w, sampleRate, 16, channels, 1),
		channels: channels,
	}
}

// WriteSamples appends one block of interleaved float32 samples,
// clamping each to [-1, 1] and widening to PCM16.
func (e *Encoder) WriteSamples(samples []float32) error {
	if e.buf == nil || cap(e.buf.Data) < len(samples) {
		e.buf = &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: e.channels,
				SampleRate:  e.enc.SampleRate,
			},
			SourceBitDepth: 16,
			Data:           make([]int, len(samples)),
		}
	}
	e.buf.Data = e.buf.Data[:len(samples)]

	for i, x := range samples {
		e.buf.Data[i] = int(utils.Clamp(x) * 32767)
	}

	if err := e.enc.Write(e.buf); err != nil {
		return fmt.Errorf("writing wav block: %w", err)
	}
	return nil
}

// Close finalizes the WAV header. The encoder is unusable afterwards.
func (e *Encoder) Close() error {
	return e.enc.Close()
}
