// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/audmix/pcm"

// Direction tags an audio-processed notification with which half of the
// device exchange produced the block.
type Direction int

const (
	Playback Direction = iota
	Record
)

func (d Direction) String() string {
	switch d {
	case Playback:
		return "playback"
	case Record:
		return "record"
	}
	return "unknown"
}

// Capability is the set of directions a device is opened for.
type Capability uint8

const (
	CapabilityPlayback Capability = 1 << iota
	CapabilityRecord

	CapabilityDuplex = CapabilityPlayback | CapabilityRecord
)

func (c Capability) CanPlay() bool   { return c&CapabilityPlayback != 0 }
func (c Capability) CanRecord() bool { return c&CapabilityRecord != 0 }

func (c Capability) String() string {
	switch c {
	case CapabilityPlayback:
		return "playback"
	case CapabilityRecord:
		return "record"
	case CapabilityDuplex:
		return "duplex"
	}
	return "none"
}

// DataProc is the hot-path entry point a backend invokes once per
// hardware period. output is non-nil for playback periods, input for
// capture periods; duplex devices pass both. Buffers hold frameCount
// frames in the device sample format.
type DataProc func(output, input []byte, frameCount int)

// Backend abstracts the device layer. Callback-driven backends own a
// real-time thread and invoke the DataProc from it between Start and
// Stop; the engine never polls them.
//
// Open must validate the device configuration and bind the DataProc.
// Close releases the device; the engine guarantees Stop has returned
// before Close is called.
type Backend interface {
	Open(cfg DeviceConfig, proc DataProc) error
	Start() error
	Stop() error
	Close() error
}

// PumpBackend is implemented by blocking-I/O backends with no callback
// thread of their own. The engine spawns a pump goroutine that calls
// Start, loops Pump until told to stop, then calls Stop.
//
// Pump performs one bounded device exchange (read, process, write) and
// must not block indefinitely.
type PumpBackend interface {
	Backend
	Pump() error
}

// DeviceConfig is the resolved device parameters handed to Backend.Open.
type DeviceConfig struct {
	SampleRate   int
	Channels     int
	Format       pcm.Format
	Capability   Capability
	PeriodMillis int
}
