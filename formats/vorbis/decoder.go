// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audmix/audio"
)

// oggStream is the slice of oggvorbis.Reader the provider depends on,
// kept as an interface so tests can inject a fake stream.
type oggStream interface {
	Read(p []float32) (int, error)
	SampleRate() int
	Channels() int
	Length() int64
	SetPosition(pos int64) error
}

type provider struct {
	dec      oggStream
	seekable bool
}

func (p *provider) SampleRate() int { return p.dec.SampleRate() }
func (p *provider) Channels() int   { return p.dec.Channels() }
func (p *provider) CanSeek() bool   { return p.seekable }
func (p *provider) Close() error    { return nil }

// Length converts oggvorbis's frame count to interleaved samples.
// Unseekable streams cannot know their length up front.
func (p *provider) Length() int64 {
	if !p.seekable {
		return -1
	}
	return p.dec.Length() * int64(p.dec.Channels())
}

func (p *provider) Seek(sampleOffset int64) error {
	if !p.seekable {
		return audio.ErrNotSupported
	}
	frame := sampleOffset / int64(p.dec.Channels())
	if err := p.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("seeking vorbis: %w", err)
	}
	return nil
}

func (p *provider) ReadSamples(dst []float32) (int, error) {
	// oggvorbis only returns whole frames; align the request so a
	// partial frame never splits across calls.
	usable := len(dst) - len(dst)%p.dec.Channels()
	if usable == 0 {
		return 0, nil
	}

	n, err := p.dec.Read(dst[:usable])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("reading vorbis: %w", err)
	}
	return n, err
}

// Decoder decodes Ogg Vorbis streams. Decoding is streaming; seeking
// and Length are available when the input is an io.Seeker.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Provider, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening vorbis: %w", err)
	}

	_, seekable := r.(io.Seeker)
	return &provider{dec: dec, seekable: seekable}, nil
}
