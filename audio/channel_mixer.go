// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer adapts a provider's channel layout to a target channel
// count: downmixing by averaging, upmixing by duplicating the source
// frame across the extra channels. Rate and sample values are
// untouched.
type ChannelMixer struct {
	src      Provider
	channels int
	tmp      []float32
}

func NewChannelMixer(src Provider, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) CanSeek() bool   { return m.src.CanSeek() }

func (m *ChannelMixer) Length() int64 {
	n := m.src.Length()
	if n < 0 {
		return -1
	}
	return n / int64(m.src.Channels()) * int64(m.channels)
}

// Seek maps the offset from output to source channel layout.
func (m *ChannelMixer) Seek(sampleOffset int64) error {
	frame := sampleOffset / int64(m.channels)
	return m.src.Seek(frame * int64(m.src.Channels()))
}

func (m *ChannelMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	srcCh := m.src.Channels()
	if srcCh == m.channels {
		// Pass-through: layouts already match
		return m.src.ReadSamples(dst)
	}

	maxFrames := len(dst) / m.channels
	samplesNeeded := maxFrames * srcCh

	// Grow tmp if needed (never shrink, to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, samplesNeeded)
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / srcCh

	switch {
	case srcCh == 1:
		// Upmix mono: duplicate the frame across every output channel
		for f := 0; f < frames; f++ {
			v := m.tmp[f]
			base := f * m.channels
			for c := 0; c < m.channels; c++ {
				dst[base+c] = v
			}
		}
	case m.channels == 1 && srcCh == 2:
		// Stereo downmix (most common)
		for f := 0; f < frames; f++ {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		// Generic: average the source frame, spread it across dst
		inv := float32(1.0) / float32(srcCh)
		for f := 0; f < frames; f++ {
			sum := float32(0)
			for c := 0; c < srcCh; c++ {
				sum += m.tmp[f*srcCh+c]
			}
			v := sum * inv
			base := f * m.channels
			for c := 0; c < m.channels; c++ {
				dst[base+c] = v
			}
		}
	}

	return frames * m.channels, err
}
