// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audmix/audio"
)

// mp3Stream is the slice of gomp3.Decoder the provider depends on,
// kept as an interface so tests can inject a fake stream.
type mp3Stream interface {
	io.ReadSeeker
	SampleRate() int
	Length() int64
}

// go-mp3 always outputs 16-bit little-endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
	bytesPerFrame  = channels * bytesPerSample
)

type provider struct {
	dec      mp3Stream
	seekable bool
	buf      []byte
}

func (p *provider) SampleRate() int { return p.dec.SampleRate() }
func (p *provider) Channels() int   { return channels }
func (p *provider) CanSeek() bool   { return p.seekable }
func (p *provider) Close() error    { return nil }

// Length converts go-mp3's decoded byte length to interleaved samples;
// -1 passes through for unseekable streams.
func (p *provider) Length() int64 {
	b := p.dec.Length()
	if b < 0 {
		return -1
	}
	return b / bytesPerSample
}

func (p *provider) Seek(sampleOffset int64) error {
	if !p.seekable {
		return audio.ErrNotSupported
	}
	frame := sampleOffset / channels
	if _, err := p.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seeking mp3: %w", err)
	}
	return nil
}

func (p *provider) ReadSamples(dst []float32) (int, error) {
	want := len(dst) * bytesPerSample
	if cap(p.buf) < want {
		p.buf = make([]byte, want)
	}
	p.buf = p.buf[:want]

	n, err := p.dec.Read(p.buf)
	samples := n / bytesPerSample
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(p.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("reading mp3: %w", err)
	}
	return samples, err
}

// Decoder decodes MP3 streams. Decoding is streaming: frames are
// produced on demand rather than loaded up front, and seeking works
// whenever the input itself is an io.Seeker.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Provider, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3: %w", err)
	}

	_, seekable := r.(io.Seeker)
	return &provider{dec: dec, seekable: seekable}, nil
}
