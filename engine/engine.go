// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

// live guards the one-engine-per-process invariant. New claims it with a
// CAS; Close releases it last, so a subsequent New is valid.
var live atomic.Bool

// AudioHandler observes every processed block. Playback blocks are the
// rendered graph output before device conversion; Record blocks are the
// captured input after conversion to float. Handlers run on the
// real-time context and must not block; the buffer is only valid for
// the duration of the call.
type AudioHandler func(direction Direction, samples []float32, frameCount int)

type handlerEntry struct {
	id uint64
	fn AudioHandler
}

// Engine owns the backend connection and the master mixer, and is the
// single synchronous hot-path entry between the device and the graph.
//
// Exactly one real-time context executes Process: the backend's own
// callback thread, or the pump goroutine the engine spawns for
// PumpBackends. Control operations (graph mutation, solo, player
// transport) may run concurrently from one control thread; each mixer's
// mutex and the engine solo mutex serialize them against the render.
// A control mutation can therefore stall the real-time thread for the
// duration of one insert or remove. That bound is part of the latency
// budget; keep control work off the hot path when the period is tight.
type Engine struct {
	cfg     Config
	backend Backend
	logger  *slog.Logger

	master *audio.Mixer

	soloMu sync.Mutex
	solo   audio.Component

	handlerMu   sync.Mutex
	nextHandler uint64
	handlers    atomic.Pointer[[]handlerEntry]

	scratch sync.Pool

	// Pump-strategy plumbing; nil for callback backends.
	pumpStop chan struct{}
	pumpDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// New claims the process engine slot, opens the backend with cfg, and
// starts the device. On a PumpBackend the engine spawns the pump
// goroutine that drives the device; otherwise the backend's own
// callback thread invokes Process.
//
// A nil logger discards engine logs.
func New(backend Backend, cfg Config, logger *slog.Logger) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, ErrInvalidConfiguration
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !live.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}

	e := &Engine{
		cfg:     cfg,
		backend: backend,
		logger:  logger,
		master:  audio.NewMixer(cfg.Channels),
		scratch: sync.Pool{New: func() any { return new([]float32) }},
	}

	dcfg := DeviceConfig{
		SampleRate:   cfg.SampleRate,
		Channels:     cfg.Channels,
		Format:       cfg.Format,
		Capability:   cfg.Capability,
		PeriodMillis: cfg.PeriodMillis,
	}
	if err := backend.Open(dcfg, e.Process); err != nil {
		live.Store(false)
		return nil, err
	}

	if pb, ok := backend.(PumpBackend); ok {
		if err := e.startPump(pb); err != nil {
			_ = backend.Close()
			live.Store(false)
			return nil, err
		}
	} else {
		if err := backend.Start(); err != nil {
			_ = backend.Close()
			live.Store(false)
			return nil, err
		}
	}

	logger.Info("engine started",
		"sampleRate", cfg.SampleRate,
		"channels", cfg.Channels,
		"format", cfg.Format.String(),
		"capability", cfg.Capability,
	)
	return e, nil
}

// SampleRate of the engine in Hz.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// Channels of the engine format.
func (e *Engine) Channels() int { return e.cfg.Channels }

// Format of the device exchange.
func (e *Engine) Format() pcm.Format { return e.cfg.Format }

// Master returns the root mixer. Attach components here to make them
// audible.
func (e *Engine) Master() *audio.Mixer { return e.master }

// SoloComponent routes output exclusively through c, overriding the
// rest of the graph without touching any component's own enabled or
// muted flags.
func (e *Engine) SoloComponent(c audio.Component) {
	e.soloMu.Lock()
	defer e.soloMu.Unlock()
	e.solo = c
}

// UnsoloComponent clears the solo override if c holds it. Unsoloing a
// component that is not soloed is a no-op.
func (e *Engine) UnsoloComponent(c audio.Component) {
	e.soloMu.Lock()
	defer e.soloMu.Unlock()
	if e.solo == c {
		e.solo = nil
	}
}

// Soloed returns the solo override, or nil.
func (e *Engine) Soloed() audio.Component {
	e.soloMu.Lock()
	defer e.soloMu.Unlock()
	return e.solo
}

// OnAudioProcessed registers fn for every processed block and returns
// its unsubscribe func. The handler list is copy-on-write: the hot path
// reads it with one atomic load, so registration never stalls a render.
func (e *Engine) OnAudioProcessed(fn AudioHandler) (unsubscribe func()) {
	e.handlerMu.Lock()
	defer e.handlerMu.Unlock()

	e.nextHandler++
	id := e.nextHandler

	var old []handlerEntry
	if p := e.handlers.Load(); p != nil {
		old = *p
	}
	next := make([]handlerEntry, len(old)+1)
	copy(next, old)
	next[len(old)] = handlerEntry{id: id, fn: fn}
	e.handlers.Store(&next)

	return func() {
		e.handlerMu.Lock()
		defer e.handlerMu.Unlock()

		cur := *e.handlers.Load()
		next := make([]handlerEntry, 0, len(cur))
		for _, h := range cur {
			if h.id != id {
				next = append(next, h)
			}
		}
		e.handlers.Store(&next)
	}
}

// Process is the hot-path entry the backend invokes once per hardware
// period. Output buffers are rendered from the graph; input buffers are
// handed to the audio-processed notification tagged Record (capture is
// a sink at this layer, not a graph source).
//
// On the native float format both halves are zero-copy; any other
// format routes through one pooled scratch buffer, returned on every
// exit path.
func (e *Engine) Process(output, input []byte, frameCount int) {
	if frameCount <= 0 {
		return
	}
	if output != nil {
		e.processOutput(output, frameCount)
	}
	if input != nil {
		e.processInput(input, frameCount)
	}
}

func (e *Engine) processOutput(out []byte, frameCount int) {
	n := frameCount * e.cfg.Channels

	if e.cfg.Format == pcm.FormatF32 {
		buf := floatView(out, n)
		clear(buf)
		e.render(buf)
		e.notify(Playback, buf, frameCount)
		return
	}

	bp := e.scratch.Get().(*[]float32)
	defer e.scratch.Put(bp)
	if cap(*bp) < n {
		*bp = make([]float32, n)
	}
	buf := (*bp)[:n]

	e.render(buf)
	e.notify(Playback, buf, frameCount)
	// ToDevice clears buf, so the pooled buffer goes back as silence.
	if err := pcm.ToDevice(buf, out, e.cfg.Format); err != nil {
		// Unreachable: the format was validated at construction and the
		// backend sized the device buffer.
		clear(buf)
	}
}

func (e *Engine) processInput(in []byte, frameCount int) {
	n := frameCount * e.cfg.Channels

	if e.cfg.Format == pcm.FormatF32 {
		e.notify(Record, floatView(in, n), frameCount)
		return
	}

	bp := e.scratch.Get().(*[]float32)
	defer e.scratch.Put(bp)
	if cap(*bp) < n {
		*bp = make([]float32, n)
	}
	buf := (*bp)[:n]

	if err := pcm.FromDevice(in, buf, e.cfg.Format); err != nil {
		clear(buf)
		return
	}
	e.notify(Record, buf, frameCount)
	clear(buf)
}

// render mixes one block from the solo override or the master mixer
// into buf.
func (e *Engine) render(buf []float32) {
	e.soloMu.Lock()
	target := audio.Component(e.master)
	if e.solo != nil {
		target = e.solo
	}
	e.soloMu.Unlock()

	target.Process(buf)
}

func (e *Engine) notify(dir Direction, samples []float32, frameCount int) {
	p := e.handlers.Load()
	if p == nil {
		return
	}
	for _, h := range *p {
		h.fn(dir, samples, frameCount)
	}
}

// startPump spawns the goroutine that drives a blocking backend. The
// goroutine owns device start and stop; Start errors surface here
// synchronously.
func (e *Engine) startPump(pb PumpBackend) error {
	e.pumpStop = make(chan struct{})
	e.pumpDone = make(chan struct{})
	initErr := make(chan error, 1)

	go func() {
		defer close(e.pumpDone)

		if err := pb.Start(); err != nil {
			initErr <- err
			return
		}
		initErr <- nil

		for {
			select {
			case <-e.pumpStop:
				if err := pb.Stop(); err != nil {
					e.logger.Error("pump stop failed", "error", err)
				}
				return
			default:
			}
			if err := pb.Pump(); err != nil {
				e.logger.Error("pump failed", "error", err)
				_ = pb.Stop()
				return
			}
		}
	}()

	if err := <-initErr; err != nil {
		<-e.pumpDone
		return err
	}
	return nil
}

// Close stops the device, releases the backend, and closes the master
// mixer with everything attached to it. On a pump backend it signals
// the pump goroutine and blocks until it has exited and device cleanup
// completed. Close is idempotent; the engine slot is released last, so
// a new engine can be constructed afterwards.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.pumpStop != nil {
			close(e.pumpStop)
			<-e.pumpDone
		} else if err := e.backend.Stop(); err != nil {
			e.closeErr = err
		}

		if err := e.backend.Close(); err != nil && e.closeErr == nil {
			e.closeErr = err
		}
		if err := e.master.Close(); err != nil && e.closeErr == nil {
			e.closeErr = err
		}

		e.logger.Info("engine closed")
		live.Store(false)
	})
	return e.closeErr
}

// floatView reinterprets a device byte buffer as float32 samples
// without copying. The backend guarantees 4-byte alignment for float
// device buffers.
func floatView(b []byte, n int) []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), n)
}
