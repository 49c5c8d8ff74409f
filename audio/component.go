// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"
	"sync/atomic"
)

// Component is anything renderable in the graph: a Player, a Mixer, or
// another generator. Process additively mixes one block of interleaved
// float32 samples into out; components add into the buffer, they never
// overwrite it.
//
// Process runs on the real-time audio context. Everything else is
// control-plane and may be called concurrently with Process.
type Component interface {
	Process(out []float32)

	Enabled() bool
	SetEnabled(enabled bool)
	Muted() bool
	SetMuted(muted bool)

	// Parent is the mixer this component is attached to, or nil. It is
	// a non-owning back-reference used for cycle and solo checks only.
	Parent() *Mixer

	setParent(m *Mixer)
}

// Modifier transforms a component's sample block in place after it has
// been generated. Modifiers run in insertion order on the real-time
// context and must not block or allocate.
type Modifier interface {
	Apply(samples []float32, channels int)
}

// Analyzer observes a component's sample block after all modifiers have
// run. Analyzers must treat the block as read-only.
type Analyzer interface {
	Analyze(samples []float32, channels int)
}

// Node carries the state shared by every component kind: the
// enabled/muted flags, the parent back-reference, and the ordered
// modifier and analyzer chains. Embed it to build a custom generator;
// only Process is left to implement.
type Node struct {
	enabled atomic.Bool
	muted   atomic.Bool
	parent  atomic.Pointer[Mixer]

	chainMu   sync.Mutex
	modifiers []Modifier
	analyzers []Analyzer
}

func (n *Node) Enabled() bool           { return n.enabled.Load() }
func (n *Node) SetEnabled(enabled bool) { n.enabled.Store(enabled) }
func (n *Node) Muted() bool             { return n.muted.Load() }
func (n *Node) SetMuted(muted bool)     { n.muted.Store(muted) }

func (n *Node) Parent() *Mixer     { return n.parent.Load() }
func (n *Node) setParent(m *Mixer) { n.parent.Store(m) }

func (n *Node) AddModifier(m Modifier) {
	if m == nil {
		return
	}
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	n.modifiers = append(n.modifiers, m)
}

func (n *Node) RemoveModifier(m Modifier) {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	for i, cur := range n.modifiers {
		if cur == m {
			n.modifiers = append(n.modifiers[:i], n.modifiers[i+1:]...)
			return
		}
	}
}

func (n *Node) AddAnalyzer(a Analyzer) {
	if a == nil {
		return
	}
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	n.analyzers = append(n.analyzers, a)
}

func (n *Node) RemoveAnalyzer(a Analyzer) {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	for i, cur := range n.analyzers {
		if cur == a {
			n.analyzers = append(n.analyzers[:i], n.analyzers[i+1:]...)
			return
		}
	}
}

// runChains applies the modifier chain in order, then hands the block
// to every analyzer.
func (n *Node) runChains(out []float32, channels int) {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()

	for _, m := range n.modifiers {
		m.Apply(out, channels)
	}
	for _, a := range n.analyzers {
		a.Analyze(out, channels)
	}
}
