// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"sync/atomic"
)

// Gain scales a component's output by a constant factor. The factor can
// be changed from the control thread while audio is running.
type Gain struct {
	factor atomic.Uint32 // float32 bits
}

func NewGain(factor float32) *Gain {
	g := &Gain{}
	g.SetFactor(factor)
	return g
}

func (g *Gain) Factor() float32 {
	return math.Float32frombits(g.factor.Load())
}

func (g *Gain) SetFactor(factor float32) {
	g.factor.Store(math.Float32bits(factor))
}

func (g *Gain) Apply(samples []float32, _ int) {
	f := g.Factor()
	for i := range samples {
		samples[i] *= f
	}
}

// PeakAnalyzer tracks the largest absolute sample value seen since the
// last Reset. It never touches the buffer.
type PeakAnalyzer struct {
	peak atomic.Uint32 // float32 bits, always >= 0
}

func (a *PeakAnalyzer) Peak() float32 {
	return math.Float32frombits(a.peak.Load())
}

func (a *PeakAnalyzer) Reset() {
	a.peak.Store(0)
}

func (a *PeakAnalyzer) Analyze(samples []float32, _ int) {
	var peak float32
	for _, x := range samples {
		if x < 0 {
			x = -x
		}
		if x > peak {
			peak = x
		}
	}

	for {
		old := a.peak.Load()
		if peak <= math.Float32frombits(old) {
			return
		}
		if a.peak.CompareAndSwap(old, math.Float32bits(peak)) {
			return
		}
	}
}
