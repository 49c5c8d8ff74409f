// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Mixer owns an ordered set of child components and sums their output
// into one block. The mixer attached to an engine as its root is the
// master mixer; mixers can also nest to build submix groups.
//
// One mutex serializes graph mutation against traversal: the real-time
// context holds it for the duration of one block's render, so an
// Add/RemoveComponent on the control thread can delay the audio
// callback by one insert or remove. That bounded stall is a deliberate
// latency-budget tradeoff over a lock-free structure.
type Mixer struct {
	Node

	channels int

	mu       sync.Mutex
	children []Component
	closed   bool
}

// NewMixer creates an enabled mixer producing interleaved blocks with
// the given channel count.
func NewMixer(channels int) *Mixer {
	m := &Mixer{channels: channels}
	m.SetEnabled(true)
	return m
}

// Channels returns the channel count of the blocks this mixer renders.
func (m *Mixer) Channels() int { return m.channels }

// AddComponent attaches c to this mixer. It fails with ErrCycleDetected
// when c is found on this mixer's own ancestor chain, i.e. when the add
// would close a loop; the graph is left untouched in that case. Adding
// a component that is already attached is a no-op.
func (m *Mixer) AddComponent(c Component) error {
	if c == nil {
		return ErrInvalidArgument
	}

	// Walk up from the mutation target. If c is an ancestor of m (or m
	// itself), attaching it underneath would create a cycle.
	for anc := m; anc != nil; anc = anc.Parent() {
		if Component(anc) == c {
			return ErrCycleDetected
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	for _, cur := range m.children {
		if cur == c {
			return nil
		}
	}

	m.children = append(m.children, c)
	c.setParent(m)
	return nil
}

// RemoveComponent detaches c. Removing a component that is absent (or
// already removed) is a no-op, never an error.
func (m *Mixer) RemoveComponent(c Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, cur := range m.children {
		if cur == c {
			m.children = append(m.children[:i], m.children[i+1:]...)
			c.setParent(nil)
			return
		}
	}
}

// Components returns a snapshot of the attached children.
func (m *Mixer) Components() []Component {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Component, len(m.children))
	copy(out, m.children)
	return out
}

// Process renders every enabled, unmuted child additively into out,
// then runs the mixer's own modifier and analyzer chains.
func (m *Mixer) Process(out []float32) {
	if !m.Enabled() || m.Muted() {
		return
	}

	m.mu.Lock()
	for _, c := range m.children {
		if c.Enabled() && !c.Muted() {
			c.Process(out)
		}
	}
	m.mu.Unlock()

	m.runChains(out, m.channels)
}

// Close detaches and closes every owned child, then clears the set.
// Further mutation on a closed mixer is a no-op. Close is idempotent
// and never fails.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	for _, c := range m.children {
		c.setParent(nil)
		if closer, ok := c.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	m.children = nil
	m.closed = true
	return nil
}
