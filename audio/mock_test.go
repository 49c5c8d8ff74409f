// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockProvider generates deterministic audio for tests.
type mockProvider struct {
	sampleRate  int
	channels    int
	totalFrames int64
	frame       int64
	seekable    bool
	closed      bool
	waveform    func(frame int64, channel int) float32
}

func newMockProvider(sampleRate, channels int, totalFrames int64, waveform func(frame int64, channel int) float32) *mockProvider {
	return &mockProvider{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		seekable:    true,
		waveform:    waveform,
	}
}

func newSilentProvider(sampleRate, channels int, totalFrames int64) *mockProvider {
	return newMockProvider(sampleRate, channels, totalFrames, func(int64, int) float32 {
		return 0
	})
}

func newConstantProvider(sampleRate, channels int, totalFrames int64, value float32) *mockProvider {
	return newMockProvider(sampleRate, channels, totalFrames, func(int64, int) float32 {
		return value
	})
}

func newSineProvider(sampleRate, channels int, totalFrames int64, frequency float64) *mockProvider {
	return newMockProvider(sampleRate, channels, totalFrames, func(frame int64, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// newRampProvider yields the frame index scaled into [0,1); handy for
// verifying exact sample positions.
func newRampProvider(sampleRate, channels int, totalFrames int64) *mockProvider {
	return newMockProvider(sampleRate, channels, totalFrames, func(frame int64, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

func (m *mockProvider) SampleRate() int { return m.sampleRate }
func (m *mockProvider) Channels() int   { return m.channels }
func (m *mockProvider) CanSeek() bool   { return m.seekable }
func (m *mockProvider) Length() int64   { return m.totalFrames * int64(m.channels) }

func (m *mockProvider) Close() error {
	m.closed = true
	return nil
}

func (m *mockProvider) ReadSamples(dst []float32) (int, error) {
	if m.frame >= m.totalFrames {
		return 0, io.EOF
	}

	frames := int64(len(dst) / m.channels)
	if left := m.totalFrames - m.frame; frames > left {
		frames = left
	}

	for f := int64(0); f < frames; f++ {
		for c := 0; c < m.channels; c++ {
			dst[f*int64(m.channels)+int64(c)] = m.waveform(m.frame+f, c)
		}
	}
	m.frame += frames

	n := int(frames) * m.channels
	if m.frame >= m.totalFrames {
		return n, io.EOF
	}
	return n, nil
}

func (m *mockProvider) Seek(sampleOffset int64) error {
	if !m.seekable {
		return ErrNotSupported
	}
	m.frame = sampleOffset / int64(m.channels)
	return nil
}
