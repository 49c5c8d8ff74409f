// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is the playback state of a Player.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// LoopEndAuto is the loop-end sentinel meaning "loop at the provider's
// end of stream".
const LoopEndAuto int64 = -1

// guardFrames is how many source frames are fetched beyond the minimum
// an interpolated block needs, so interpolation never reads past the
// available data.
const guardFrames = 2

// Player streams variable-speed, loopable, seekable audio from a
// pull-based Provider into the graph using linear-interpolation
// resampling.
//
// The provider's sample rate and channel count must match the engine
// format; wrap mismatched providers with NewResampler / NewChannelMixer
// first. One player mutex serializes control operations (Play, Pause,
// Stop, Seek, speed and loop changes) against the real-time render.
type Player struct {
	Node

	provider Provider
	channels int
	rate     int

	state atomic.Int32

	// Everything below is guarded by mu. Process holds it for one
	// block; control operations hold it for one field update.
	mu        sync.Mutex
	speed     float64
	frac      float64 // fractional read cursor, always in [0, 1)
	pos       int64   // whole source frames consumed so far
	looping   bool
	loopStart int64 // frames
	loopEnd   int64 // frames, or LoopEndAuto
	eof       bool

	// carry holds source samples fetched but not yet consumed (the
	// guard frames of the previous block), so no source data is lost
	// between blocks and speed 1.0 stays bit-exact.
	carry       []float32
	carryFrames int

	onEnded    func()
	onPosition func(sampleOffset int64)

	// Loop wraps happen while mu is held; the position notification is
	// parked here and fired by Process after the unlock.
	wrapNotify bool
}

// NewPlayer creates a stopped, enabled player over p.
func NewPlayer(p Provider) (*Player, error) {
	if p == nil || p.Channels() <= 0 || p.SampleRate() <= 0 {
		return nil, ErrInvalidArgument
	}

	pl := &Player{
		provider: p,
		channels: p.Channels(),
		rate:     p.SampleRate(),
		speed:    1.0,
		loopEnd:  LoopEndAuto,
	}
	pl.SetEnabled(true)
	return pl, nil
}

// State returns the current playback state.
func (p *Player) State() State { return State(p.state.Load()) }

// Play starts or resumes playback.
func (p *Player) Play() {
	p.SetEnabled(true)
	p.state.Store(int32(Playing))
}

// Pause suspends playback, keeping the read position.
func (p *Player) Pause() {
	p.state.Store(int32(Paused))
}

// Stop halts playback and rewinds to the start of the stream. The
// state flips before the next audio callback observes it.
func (p *Player) Stop() {
	p.state.Store(int32(Stopped))
	if p.provider.CanSeek() {
		// Seek failure on a stop is unreportable by design; the next
		// Play simply resumes from wherever the provider is.
		_ = p.Seek(0)
	}
}

// Speed returns the playback speed factor.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// SetSpeed changes the playback speed. Speed must be positive; 1.0 is
// the provider's native rate.
func (p *Player) SetSpeed(speed float64) error {
	if speed <= 0 {
		return ErrInvalidArgument
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
	return nil
}

// Position returns the current read position in interleaved samples.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos * int64(p.channels)
}

// SetLooping enables or disables looping.
func (p *Player) SetLooping(looping bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.looping = looping
}

// Looping reports whether looping is enabled.
func (p *Player) Looping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.looping
}

// SetLoopPoints sets the loop region in interleaved sample offsets.
// End may be LoopEndAuto to loop at the provider's end. Both points are
// clamped into the provider's length; a non-sentinel end before start
// fails with ErrInvalidArgument and leaves the loop region unchanged.
func (p *Player) SetLoopPoints(start, end int64) error {
	ch := int64(p.channels)

	startF := p.clampFrame(start / ch)
	endF := end
	if end != LoopEndAuto {
		endF = p.clampFrame(end / ch)
		if endF < startF {
			return ErrInvalidArgument
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopStart = startF
	p.loopEnd = endF
	return nil
}

// SetLoopPointsTime sets the loop region from time offsets, converted
// via sampleRate and channel count. A negative end means LoopEndAuto.
func (p *Player) SetLoopPointsTime(start, end time.Duration) error {
	toSamples := func(d time.Duration) int64 {
		return int64(d.Seconds() * float64(p.rate) * float64(p.channels))
	}

	endSamples := LoopEndAuto
	if end >= 0 {
		endSamples = toSamples(end)
	}
	return p.SetLoopPoints(toSamples(start), endSamples)
}

// LoopPoints returns the loop region in interleaved sample offsets.
func (p *Player) LoopPoints() (start, end int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start = p.loopStart * int64(p.channels)
	end = p.loopEnd
	if end != LoopEndAuto {
		end *= int64(p.channels)
	}
	return start, end
}

// SetOnPlaybackEnded registers the callback fired when a non-looping
// stream runs out. It runs on the real-time context; keep it short.
func (p *Player) SetOnPlaybackEnded(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnded = fn
}

// SetOnPositionChanged registers the callback fired after a seek or a
// loop wrap, with the new position in interleaved samples.
func (p *Player) SetOnPositionChanged(fn func(sampleOffset int64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPosition = fn
}

// Seek moves playback to an interleaved sample offset. Offsets outside
// [0, Length] clamp into range. Seeking a non-seekable provider fails
// with ErrNotSupported and leaves playback state untouched. No stale
// fractional cursor survives a seek.
func (p *Player) Seek(sampleOffset int64) error {
	if !p.provider.CanSeek() {
		return ErrNotSupported
	}

	p.mu.Lock()
	err := p.seekLocked(sampleOffset / int64(p.channels))
	fn, off := p.onPosition, p.pos*int64(p.channels)
	p.mu.Unlock()

	if err == nil && fn != nil {
		fn(off)
	}
	return err
}

// seekLocked repositions the provider at a frame offset and discards
// all interpolation state. Callers hold p.mu.
func (p *Player) seekLocked(frame int64) error {
	frame = p.clampFrame(frame)

	if err := p.provider.Seek(frame * int64(p.channels)); err != nil {
		return err
	}

	p.pos = frame
	p.frac = 0
	p.carryFrames = 0
	p.eof = false
	return nil
}

// clampFrame limits a frame offset to [0, provider length].
func (p *Player) clampFrame(frame int64) int64 {
	if frame < 0 {
		return 0
	}
	if total := p.provider.Length(); total >= 0 {
		if last := total / int64(p.channels); frame > last {
			return last
		}
	}
	return frame
}

// Close stops playback and closes the provider.
func (p *Player) Close() error {
	p.state.Store(int32(Stopped))
	p.SetEnabled(false)
	return p.provider.Close()
}

// Process renders one block. It is a no-op unless the player is
// enabled, unmuted, and Playing.
func (p *Player) Process(out []float32) {
	if !p.Enabled() || p.Muted() || State(p.state.Load()) != Playing {
		return
	}

	p.mu.Lock()
	ended := p.generate(out, 0)
	fnEnded, fnPos := p.onEnded, p.onPosition
	wrapped, pos := p.wrapNotify, p.pos*int64(p.channels)
	p.wrapNotify = false
	p.mu.Unlock()

	p.runChains(out, p.channels)

	if wrapped && fnPos != nil {
		fnPos(pos)
	}
	if ended && fnEnded != nil {
		fnEnded()
	}
}

// generate fills out, recursing across loop boundaries so a wrap never
// costs an audible gap. depth bounds the recursion against degenerate
// zero-length loop regions. It returns true when playback ended this
// block. Callers hold p.mu.
func (p *Player) generate(out []float32, depth int) (ended bool) {
	ch := p.channels
	outFrames := len(out) / ch
	if outFrames == 0 {
		return false
	}

	// Cap this pass at the loop end so the wrap lands exactly on it.
	frames := outFrames
	wrapping := false
	if p.looping && p.loopEnd != LoopEndAuto {
		remaining := float64(p.loopEnd-p.pos) - p.frac
		fit := int(remaining / p.speed)
		if fit < frames {
			frames = fit
			wrapping = true
		}
	}

	rendered := 0
	short := false
	if frames > 0 {
		rendered, short = p.render(out, frames)
	}

	if rendered == outFrames {
		return false
	}
	rest := out[rendered*ch:]

	if short {
		// The provider came up short of the block's needs: end of
		// stream on the remainder.
		clear(rest)
		return p.endOfStream(rest, depth)
	}

	if wrapping {
		return p.wrap(rest, depth)
	}
	return false
}

// render produces up to frames output frames by linear interpolation,
// advancing the fractional cursor by speed per frame. It reports how
// many frames it produced and whether it stopped early because the
// provider is exhausted.
func (p *Player) render(out []float32, frames int) (rendered int, short bool) {
	ch := p.channels

	// Source frames this block needs: the last output frame reads
	// floor(frac + (frames-1)*speed) + 1, plus guard frames.
	need := int(p.frac+float64(frames)*p.speed) + guardFrames
	have := p.fill(need)

	cur := p.frac
	for ; rendered < frames; rendered++ {
		i := int(cur)
		if i >= have || (i+1 >= have && !p.eof) {
			// Only reachable after a short fill.
			break
		}
		j := i + 1
		if j >= have {
			// At the end of the stream the final frame has no
			// successor; hold it so an integral cursor still
			// reproduces it exactly.
			j = i
		}
		t := float32(cur - float64(i))
		base := rendered * ch
		for c := 0; c < ch; c++ {
			s0 := p.carry[i*ch+c]
			s1 := p.carry[j*ch+c]
			out[base+c] += s0 + (s1-s0)*t
		}
		cur += p.speed
	}

	// Drop the consumed whole frames, keeping the tail for the next
	// block.
	whole := int(cur)
	if whole > have {
		whole = have
	}
	if keep := have - whole; keep > 0 {
		copy(p.carry, p.carry[whole*ch:have*ch])
		p.carryFrames = keep
	} else {
		p.carryFrames = 0
	}
	p.frac = cur - float64(whole)
	p.pos += int64(whole)

	return rendered, rendered < frames
}

// fill tops the carry buffer up to need frames from the provider and
// returns how many frames are available.
func (p *Player) fill(need int) int {
	ch := p.channels
	if cap(p.carry) < need*ch {
		grown := make([]float32, need*ch)
		copy(grown, p.carry[:p.carryFrames*ch])
		p.carry = grown
	}
	p.carry = p.carry[:cap(p.carry)]

	for p.carryFrames < need && !p.eof {
		n, err := p.provider.ReadSamples(p.carry[p.carryFrames*ch : need*ch])
		p.carryFrames += n / ch
		if err != nil {
			p.eof = true
		} else if n == 0 {
			break
		}
	}
	return p.carryFrames
}

// wrap seeks back to the loop start and immediately re-renders into the
// remaining span of the block.
func (p *Player) wrap(rest []float32, depth int) bool {
	if depth >= 2 {
		// A loop region shorter than one output frame cannot make
		// progress; give up on the remainder rather than recurse.
		return false
	}
	if err := p.seekLocked(p.loopStart); err != nil {
		return p.stopPlayback()
	}
	p.wrapNotify = true
	return p.generate(rest, depth+1)
}

// endOfStream handles a provider that ran dry: loop back and re-render
// the remainder with no audible gap, or stop.
func (p *Player) endOfStream(rest []float32, depth int) bool {
	if p.looping && p.provider.CanSeek() && p.loopStart < p.pos {
		return p.wrap(rest, depth)
	}
	return p.stopPlayback()
}

// stopPlayback transitions to Stopped at the end of the stream and
// disables the node. The caller fires the PlaybackEnded callback once
// the player mutex is released.
func (p *Player) stopPlayback() bool {
	p.state.Store(int32(Stopped))
	p.SetEnabled(false)
	return true
}
