// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Provider is the pull-based sample source a Player consumes.
//
// Offsets and lengths count interleaved samples, not frames: a stereo
// stream of one second at 48kHz has a Length of 96000.
type Provider interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns the number of float32 values written. When n == 0 with
	// err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Length in interleaved samples, or -1 when unknown (live sources).
	Length() int64
	// CanSeek reports whether Seek is usable on this provider.
	CanSeek() bool
	// Seek moves the read position to an interleaved sample offset from
	// the start of the stream.
	Seek(sampleOffset int64) error
	// Close releases any resources.
	Close() error
}

// OpenFunc constructs a Provider from an input reader.
type OpenFunc func(r io.Reader) (Provider, error)

// Registry maps format keys (e.g., "wav", "mp3", "ogg vorbis") to
// provider constructors.
type Registry struct {
	openers map[string]OpenFunc

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]OpenFunc),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, open OpenFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.openers[format] = open
}

func (r *Registry) Get(format string) (OpenFunc, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	open, ok := r.openers[format]
	return open, ok
}

// BufferProvider serves samples from an in-memory block. It is fully
// seekable and is what fully-decoded formats (WAV, AIFF) return.
type BufferProvider struct {
	samples    []float32
	sampleRate int
	channels   int
	pos        int64
}

func NewBufferProvider(samples []float32, sampleRate, channels int) *BufferProvider {
	return &BufferProvider{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

func (b *BufferProvider) SampleRate() int { return b.sampleRate }
func (b *BufferProvider) Channels() int   { return b.channels }
func (b *BufferProvider) Length() int64   { return int64(len(b.samples)) }
func (b *BufferProvider) CanSeek() bool   { return true }
func (b *BufferProvider) Close() error    { return nil }

func (b *BufferProvider) ReadSamples(dst []float32) (int, error) {
	if b.pos >= int64(len(b.samples)) {
		return 0, io.EOF
	}

	n := copy(dst, b.samples[b.pos:])
	b.pos += int64(n)

	if b.pos >= int64(len(b.samples)) {
		return n, io.EOF
	}
	return n, nil
}

func (b *BufferProvider) Seek(sampleOffset int64) error {
	if sampleOffset < 0 {
		sampleOffset = 0
	}
	if sampleOffset > int64(len(b.samples)) {
		sampleOffset = int64(len(b.samples))
	}
	// Keep the position frame-aligned.
	sampleOffset -= sampleOffset % int64(b.channels)

	b.pos = sampleOffset
	return nil
}
