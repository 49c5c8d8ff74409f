// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides deterministic waveform providers for
// tests.
package audiotest

import (
	"io"
	"math"
)

// MockProvider is a seekable test provider that synthesizes audio data.
// It implements the audio.Provider interface (without importing it, to
// stay usable from every package's tests).
type MockProvider struct {
	sampleRate  int
	channels    int
	totalFrames int64
	frame       int64
	seekable    bool
	closed      bool
	waveform    func(frame int64, channel int) float32
}

// NewMockProvider creates a provider generating waveform(frame, channel)
// for totalFrames frames.
func NewMockProvider(sampleRate, channels int, totalFrames int64, waveform func(frame int64, channel int) float32) *MockProvider {
	return &MockProvider{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		seekable:    true,
		waveform:    waveform,
	}
}

// NewSilentProvider generates silence.
func NewSilentProvider(sampleRate, channels int, totalFrames int64) *MockProvider {
	return NewMockProvider(sampleRate, channels, totalFrames, func(int64, int) float32 {
		return 0
	})
}

// NewConstantProvider generates the same value on every channel.
func NewConstantProvider(value float32, sampleRate, channels int, totalFrames int64) *MockProvider {
	return NewMockProvider(sampleRate, channels, totalFrames, func(int64, int) float32 {
		return value
	})
}

// NewSineProvider generates a sine wave at the given frequency,
// identical on every channel.
func NewSineProvider(frequency float64, sampleRate, channels int, totalFrames int64) *MockProvider {
	return NewMockProvider(sampleRate, channels, totalFrames, func(frame int64, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewRampProvider generates frame/totalFrames, a monotonically rising
// ramp whose values identify their frame index exactly.
func NewRampProvider(sampleRate, channels int, totalFrames int64) *MockProvider {
	return NewMockProvider(sampleRate, channels, totalFrames, func(frame int64, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

// SetSeekable toggles seek support, for exercising the non-seekable
// provider paths.
func (m *MockProvider) SetSeekable(seekable bool) { m.seekable = seekable }

// Closed reports whether Close has been called.
func (m *MockProvider) Closed() bool { return m.closed }

func (m *MockProvider) SampleRate() int { return m.sampleRate }
func (m *MockProvider) Channels() int   { return m.channels }
func (m *MockProvider) CanSeek() bool   { return m.seekable }

func (m *MockProvider) Length() int64 {
	return m.totalFrames * int64(m.channels)
}

func (m *MockProvider) Close() error {
	m.closed = true
	return nil
}

func (m *MockProvider) Seek(sampleOffset int64) error {
	frame := sampleOffset / int64(m.channels)
	if frame < 0 {
		frame = 0
	}
	if frame > m.totalFrames {
		frame = m.totalFrames
	}
	m.frame = frame
	return nil
}

func (m *MockProvider) ReadSamples(dst []float32) (int, error) {
	if m.frame >= m.totalFrames {
		return 0, io.EOF
	}

	frames := int64(len(dst) / m.channels)
	if remaining := m.totalFrames - m.frame; frames > remaining {
		frames = remaining
	}

	for f := int64(0); f < frames; f++ {
		for ch := 0; ch < m.channels; ch++ {
			dst[f*int64(m.channels)+int64(ch)] = m.waveform(m.frame+f, ch)
		}
	}

	m.frame += frames
	n := int(frames) * m.channels

	if m.frame >= m.totalFrames {
		return n, io.EOF
	}
	return n, nil
}
