// SPDX-License-Identifier: EPL-2.0

// Package audio provides the mixing graph: components, mixers, players,
// and the provider pipeline that feeds them.
//
// # Components
//
// A Component is anything renderable in the graph. It mixes one block
// of interleaved float32 samples additively into a shared buffer;
// components add into the buffer, they never overwrite it. Two kinds
// ship with the package:
//
//   - Mixer: owns child components and sums them
//   - Player: streams from a Provider with variable-speed resampling
//
// Custom generators embed Node and implement Process:
//
//	type tone struct {
//	    audio.Node
//	    phase float64
//	}
//
//	func (t *tone) Process(out []float32) { ... }
//
// Every component carries enabled/muted flags, a parent back-reference
// (non-owning, used for cycle and solo checks), and ordered modifier
// and analyzer chains that run after the component generates its block.
// Modifiers mutate the block in place; analyzers must treat it as
// read-only.
//
// # The graph
//
// Mixers nest to form a tree rooted at the engine's master mixer. The
// tree is always acyclic: AddComponent walks the target mixer's
// ancestor chain and rejects an add that would close a loop with
// ErrCycleDetected, leaving the graph exactly as it was.
//
// # Providers
//
// The Provider interface is the pull-based source a Player consumes:
//
//	type Provider interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Length() int64
//	    CanSeek() bool
//	    Seek(sampleOffset int64) error
//	    Close() error
//	}
//
// Decoders in the formats subpackages return Providers. Two adapters
// reshape a provider to the engine format before it reaches a Player:
//
//	// bring a 44.1kHz decode up to the 48kHz engine rate
//	p = audio.NewResampler(p, 48000)
//
//	// spread a mono stream across a stereo engine
//	p = audio.NewChannelMixer(p, 2)
//
// # Concurrency
//
// Exactly one real-time context calls Process; one control context
// mutates the graph and drives players. A single mutex per mixer (and
// per player) serializes mutation against traversal: the real-time
// thread holds it for one block's render, so a control mutation can
// stall the callback for the duration of one insert or remove. That
// bounded stall is an accepted latency-budget risk, traded for not
// maintaining a lock-free structure.
//
// Nothing on the Process path blocks on I/O or allocates after warmup.
//
// # Sample format
//
// Samples are interleaved float32 in [-1.0, 1.0]; a frame is one sample
// per channel. Provider offsets and lengths count interleaved samples.
package audio
