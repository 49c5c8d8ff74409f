// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"
	"io"

	goopus "gopkg.in/hraban/opus.v2"

	"github.com/ik5/audmix/audio"
)

// PacketReader yields successive raw Opus packets, e.g. from an Ogg
// demuxer or a network transport. It returns io.EOF when the stream
// ends.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// maxFrameMillis is the longest frame duration an Opus packet can
// carry.
const maxFrameMillis = 120

type provider struct {
	dec     *goopus.Decoder
	packets PacketReader

	sampleRate int
	channels   int

	// Decoded samples not yet handed out. A packet rarely matches the
	// caller's block size, so the remainder waits here.
	pcm    []float32
	pcmPos int

	frameBuf []float32
	eof      bool
}

// NewProvider decodes an Opus packet stream at the given rate and
// channel layout. Opus is a live-source codec at this layer: the
// provider is unseekable and its length is unknown.
func NewProvider(packets PacketReader, sampleRate, channels int) (audio.Provider, error) {
	if packets == nil || sampleRate <= 0 || channels <= 0 {
		return nil, audio.ErrInvalidArgument
	}

	dec, err := goopus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("creating opus decoder: %w", err)
	}

	return &provider{
		dec:        dec,
		packets:    packets,
		sampleRate: sampleRate,
		channels:   channels,
		frameBuf:   make([]float32, sampleRate*maxFrameMillis/1000*channels),
	}, nil
}

func (p *provider) SampleRate() int { return p.sampleRate }
func (p *provider) Channels() int   { return p.channels }
func (p *provider) Length() int64   { return -1 }
func (p *provider) CanSeek() bool   { return false }
func (p *provider) Close() error    { return nil }

func (p *provider) Seek(int64) error { return audio.ErrNotSupported }

func (p *provider) ReadSamples(dst []float32) (int, error) {
	written := 0
	for written < len(dst) {
		if p.pcmPos >= len(p.pcm) {
			if err := p.decodeNext(); err != nil {
				if written > 0 {
					return written, nil
				}
				return 0, err
			}
		}
		n := copy(dst[written:], p.pcm[p.pcmPos:])
		written += n
		p.pcmPos += n
	}
	return written, nil
}

// decodeNext pulls one packet and decodes it into the pcm buffer.
func (p *provider) decodeNext() error {
	if p.eof {
		return io.EOF
	}

	packet, err := p.packets.ReadPacket()
	if err != nil {
		p.eof = true
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("reading opus packet: %w", err)
	}

	frames, err := p.dec.DecodeFloat32(packet, p.frameBuf)
	if err != nil {
		p.eof = true
		return fmt.Errorf("decoding opus packet: %w", err)
	}

	p.pcm = p.frameBuf[:frames*p.channels]
	p.pcmPos = 0
	return nil
}
