// SPDX-License-Identifier: EPL-2.0

// Package engine owns the device backend and the hot path between the
// hardware and the mixing graph.
//
// One Engine is live per process. Constructing it claims the process
// slot, opens the backend, and starts the device; closing it stops and
// releases everything and frees the slot for a successor.
//
// # Quick Start
//
//	cfg := engine.Config{SampleRate: 48000, Channels: 2}
//	eng, err := engine.New(engine.NewMiniaudioBackend(logger), cfg, logger)
//	if err != nil {
//		// handle error
//	}
//	defer eng.Close()
//
//	player, _ := audio.NewPlayer(provider)
//	eng.Master().AddComponent(player)
//	player.Play()
//
// # Backends and Concurrency Strategy
//
// A Backend is either callback-driven or pump-driven, chosen at
// construction:
//   - Callback-driven (MiniaudioBackend): the backend owns a real-time
//     thread and invokes Engine.Process synchronously from it.
//   - Pump-driven (PortaudioBackend, behind the portaudio build tag, or
//     any PumpBackend): the engine spawns a goroutine that starts the
//     device, loops one bounded Pump step at a time until Close, then
//     stops it.
//
// Either way exactly one real-time context executes Process. Control
// operations run concurrently from the application; mixer and engine
// mutexes serialize them against the render at the cost of one bounded
// stall per mutation.
//
// # The Hot Path
//
// Process is allocation-free when the device format is f32: the device
// buffer is rendered in place and handed to notifications without a
// copy. Other formats borrow one pooled scratch buffer and convert
// through the pcm package; the buffer returns to the pool on every exit
// path. Formats the converter cannot handle are rejected when the
// engine is constructed, so the hot path has no error branch that can
// reach the backend.
//
// # Capture and Notifications
//
// Capture is a sink at this layer, not a graph source: input periods
// are converted to float and fanned out to the handlers registered via
// OnAudioProcessed, tagged Record. Playback periods fan out too, tagged
// Playback, after the graph has rendered and before device conversion.
// Handlers run on the real-time context and must not block.
//
// # Configuration
//
// Config can be built in code or loaded from YAML with LoadConfig,
// which expands ${ENV} references and applies defaults:
//
//	sample_rate: 48000
//	channels: 2
//	format: f32
//	capability: playback
//	period_ms: 10
package engine
