//go:build portaudio
// +build portaudio

// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"unsafe"

	"github.com/gordonklaus/portaudio"

	"github.com/ik5/audmix/pcm"
)

// PortaudioBackend drives the default system device through portaudio's
// blocking stream API. It has no callback thread; the engine pumps it
// from its own goroutine, which exercises the poll-driven strategy.
//
// Only the native float format is supported: portaudio hands samples
// over as typed slices, so fixed-point conversion belongs on its side
// of the fence and never materializes here.
type PortaudioBackend struct {
	stream *portaudio.Stream
	proc   DataProc

	frames int
	out    []float32
	in     []float32
}

func NewPortaudioBackend() *PortaudioBackend {
	return &PortaudioBackend{}
}

func (b *PortaudioBackend) Open(cfg DeviceConfig, proc DataProc) error {
	if cfg.Format != pcm.FormatF32 {
		return fmt.Errorf("%w: portaudio backend requires format f32, got %s",
			ErrInvalidConfiguration, cfg.Format)
	}

	if err := portaudio.Initialize(); err != nil {
		return &BackendError{Op: "initialize", Err: err}
	}

	b.proc = proc
	b.frames = cfg.SampleRate * cfg.PeriodMillis / 1000
	if b.frames <= 0 {
		b.frames = 1
	}

	inputChannels := 0
	outputChannels := 0
	args := make([]any, 0, 2)
	if cfg.Capability.CanRecord() {
		inputChannels = cfg.Channels
		b.in = make([]float32, b.frames*cfg.Channels)
		args = append(args, b.in)
	}
	if cfg.Capability.CanPlay() {
		outputChannels = cfg.Channels
		b.out = make([]float32, b.frames*cfg.Channels)
		args = append(args, b.out)
	}

	stream, err := portaudio.OpenDefaultStream(
		inputChannels,
		outputChannels,
		float64(cfg.SampleRate),
		b.frames,
		args...,
	)
	if err != nil {
		portaudio.Terminate()
		return &BackendError{Op: "open stream", Err: err}
	}

	b.stream = stream
	return nil
}

func (b *PortaudioBackend) Start() error {
	if err := b.stream.Start(); err != nil {
		return &BackendError{Op: "start", Err: err}
	}
	return nil
}

func (b *PortaudioBackend) Stop() error {
	if err := b.stream.Stop(); err != nil {
		return &BackendError{Op: "stop", Err: err}
	}
	return nil
}

// Pump performs one bounded device exchange: read the capture period if
// any, hand both halves to the engine, write the playback period.
func (b *PortaudioBackend) Pump() error {
	if b.in != nil {
		if err := b.stream.Read(); err != nil {
			return &BackendError{Op: "read", Err: err}
		}
	}

	b.proc(byteView(b.out), byteView(b.in), b.frames)

	if b.out != nil {
		if err := b.stream.Write(); err != nil {
			return &BackendError{Op: "write", Err: err}
		}
	}
	return nil
}

func (b *PortaudioBackend) Close() error {
	var err error
	if b.stream != nil {
		err = b.stream.Close()
		b.stream = nil
	}
	portaudio.Terminate()
	if err != nil {
		return &BackendError{Op: "close", Err: err}
	}
	return nil
}

// byteView reinterprets a float sample buffer as the raw bytes the
// DataProc contract expects. A nil slice stays nil.
func byteView(f []float32) []byte {
	if f == nil {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(f))), len(f)*4)
}
