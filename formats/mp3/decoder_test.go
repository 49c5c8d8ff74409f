// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audmix/audio"
)

// fakeStream plays the role of a gomp3.Decoder over synthetic PCM.
type fakeStream struct {
	*bytes.Reader
	sampleRate int
	length     int64
}

func (f *fakeStream) SampleRate() int { return f.sampleRate }
func (f *fakeStream) Length() int64   { return f.length }

// newFakeStream builds a stream of frames whose left channel counts up
// from zero and whose right channel is the negated left.
func newFakeStream(sampleRate int, frames int) *fakeStream {
	data := make([]byte, frames*bytesPerFrame)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(data[i*4:], uint16(int16(i)))
		binary.LittleEndian.PutUint16(data[i*4+2:], uint16(int16(-i)))
	}
	return &fakeStream{
		Reader:     bytes.NewReader(data),
		sampleRate: sampleRate,
		length:     int64(len(data)),
	}
}

func TestProvider_Metadata(t *testing.T) {
	t.Parallel()

	p := &provider{dec: newFakeStream(44100, 100), seekable: true}

	if p.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", p.SampleRate())
	}
	if p.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", p.Channels())
	}
	if p.Length() != 200 {
		t.Errorf("Length() = %d, want 200 samples", p.Length())
	}
	if !p.CanSeek() {
		t.Error("CanSeek() = false for a seekable stream")
	}
}

func TestProvider_ReadSamples(t *testing.T) {
	t.Parallel()

	p := &provider{dec: newFakeStream(44100, 4), seekable: true}

	dst := make([]float32, 8)
	n, err := p.ReadSamples(dst)
	if n != 8 || (err != nil && err != io.EOF) {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}

	for i := 0; i < 4; i++ {
		wantL := float32(i) / 32768
		wantR := float32(-i) / 32768
		if dst[2*i] != wantL || dst[2*i+1] != wantR {
			t.Errorf("frame %d = (%v, %v), want (%v, %v)",
				i, dst[2*i], dst[2*i+1], wantL, wantR)
		}
	}

	if n, err := p.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() past end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestProvider_Seek(t *testing.T) {
	t.Parallel()

	p := &provider{dec: newFakeStream(44100, 100), seekable: true}

	// Seek to frame 10 (sample offset 20).
	if err := p.Seek(20); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	dst := make([]float32, 2)
	if n, err := p.ReadSamples(dst); n != 2 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}
	if want := float32(10) / 32768; dst[0] != want {
		t.Errorf("sample after Seek = %v, want %v", dst[0], want)
	}
}

func TestProvider_NotSeekable(t *testing.T) {
	t.Parallel()

	p := &provider{dec: newFakeStream(44100, 10), seekable: false}

	if p.CanSeek() {
		t.Error("CanSeek() = true for an unseekable stream")
	}
	if err := p.Seek(0); !errors.Is(err, audio.ErrNotSupported) {
		t.Errorf("Seek() error = %v, want ErrNotSupported", err)
	}
}

func TestDecoder_InvalidData(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("not an mp3 stream"))); err == nil {
		t.Error("Decode() succeeded on garbage input")
	}
}
