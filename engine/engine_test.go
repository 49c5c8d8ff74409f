// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/pcm"
)

// Engine tests share the process-wide engine slot, so none of them run
// in parallel.

type mockBackend struct {
	cfg  DeviceConfig
	proc DataProc

	openErr  error
	startErr error

	started int
	stopped int
	closed  int
}

func (b *mockBackend) Open(cfg DeviceConfig, proc DataProc) error {
	if b.openErr != nil {
		return b.openErr
	}
	b.cfg = cfg
	b.proc = proc
	return nil
}

func (b *mockBackend) Start() error { b.started++; return b.startErr }
func (b *mockBackend) Stop() error  { b.stopped++; return nil }
func (b *mockBackend) Close() error { b.closed++; return nil }

// period invokes the data callback the way a device thread would.
func (b *mockBackend) period(output, input []byte, frames int) {
	b.proc(output, input, frames)
}

type mockPumpBackend struct {
	mockBackend
	pumps atomic.Int64
	out   []byte
}

func (b *mockPumpBackend) Pump() error {
	frames := b.cfg.SampleRate * b.cfg.PeriodMillis / 1000
	if b.out == nil {
		b.out = make([]byte, frames*b.cfg.Channels*b.cfg.Format.BytesPerSample())
	}
	b.proc(b.out, nil, frames)
	b.pumps.Add(1)
	time.Sleep(time.Millisecond)
	return nil
}

func testConfig() Config {
	return Config{SampleRate: 48000, Channels: 2, Format: pcm.FormatF32}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *mockBackend) {
	t.Helper()

	backend := &mockBackend{}
	eng, err := New(backend, cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng, backend
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero sample rate", Config{SampleRate: 0, Channels: 2}},
		{"negative sample rate", Config{SampleRate: -8000, Channels: 2}},
		{"zero channels", Config{SampleRate: 48000, Channels: 0}},
		{"bad format", Config{SampleRate: 48000, Channels: 2, Format: pcm.Format(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&mockBackend{}, tt.cfg, nil)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("New() error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}

	if _, err := New(nil, testConfig(), nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("New(nil backend) error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNew_Singleton(t *testing.T) {
	eng, _ := newTestEngine(t, testConfig())

	if _, err := New(&mockBackend{}, testConfig(), nil); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second New() error = %v, want ErrAlreadyInitialized", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The slot is free again after Close.
	eng2, err := New(&mockBackend{}, testConfig(), nil)
	if err != nil {
		t.Fatalf("New() after Close error = %v", err)
	}
	eng2.Close()
}

func TestNew_ReleasesSlotOnBackendFailure(t *testing.T) {
	backendErr := errors.New("no device")

	_, err := New(&mockBackend{openErr: backendErr}, testConfig(), nil)
	if !errors.Is(err, backendErr) {
		t.Fatalf("New() error = %v, want %v", err, backendErr)
	}

	_, err = New(&mockBackend{startErr: backendErr}, testConfig(), nil)
	if !errors.Is(err, backendErr) {
		t.Fatalf("New() error = %v, want %v", err, backendErr)
	}

	// Neither failure may leave the slot claimed.
	eng, err := New(&mockBackend{}, testConfig(), nil)
	if err != nil {
		t.Fatalf("New() after failed constructions error = %v", err)
	}
	eng.Close()
}

func TestClose_Idempotent(t *testing.T) {
	eng, backend := newTestEngine(t, testConfig())

	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if backend.stopped != 1 || backend.closed != 1 {
		t.Errorf("backend stopped %d times, closed %d times, want 1 and 1",
			backend.stopped, backend.closed)
	}
}

func TestProcess_FloatOutput(t *testing.T) {
	eng, backend := newTestEngine(t, testConfig())

	player := addConstantPlayer(t, eng, 0.5, 48000)
	player.Play()

	const frames = 480
	out := make([]byte, frames*2*4)
	backend.period(out, nil, frames)

	for i := 0; i < frames*2; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[4*i:]))
		if got != 0.5 {
			t.Fatalf("out[%d] = %v, want 0.5", i, got)
		}
	}
}

func TestProcess_FixedPointOutput(t *testing.T) {
	cfg := testConfig()
	cfg.Format = pcm.FormatS16
	eng, backend := newTestEngine(t, cfg)

	player := addConstantPlayer(t, eng, 0.5, 48000)
	player.Play()

	const frames = 480
	out := make([]byte, frames*2*2)
	backend.period(out, nil, frames)

	want := int16(0.5 * 32767)
	for i := 0; i < frames*2; i++ {
		got := int16(binary.LittleEndian.Uint16(out[2*i:]))
		if got != want {
			t.Fatalf("out[%d] = %d, want %d", i, got, want)
		}
	}

	// A second period must not see leftovers from the pooled scratch.
	player.SetMuted(true)
	backend.period(out, nil, frames)
	for i := 0; i < frames*2; i++ {
		if got := int16(binary.LittleEndian.Uint16(out[2*i:])); got != 0 {
			t.Fatalf("muted out[%d] = %d, want 0", i, got)
		}
	}
}

func TestProcess_RecordInput(t *testing.T) {
	cfg := testConfig()
	cfg.Format = pcm.FormatS16
	cfg.Capability = CapabilityRecord
	eng, backend := newTestEngine(t, cfg)

	const frames = 100
	in := make([]byte, frames*2*2)
	for i := 0; i < frames*2; i++ {
		binary.LittleEndian.PutUint16(in[2*i:], uint16(int16(16384)))
	}

	var gotDir Direction
	var gotSamples []float32
	unsubscribe := eng.OnAudioProcessed(func(dir Direction, samples []float32, frameCount int) {
		gotDir = dir
		gotSamples = append(gotSamples[:0], samples...)
	})
	defer unsubscribe()

	backend.period(nil, in, frames)

	if gotDir != Record {
		t.Fatalf("direction = %v, want Record", gotDir)
	}
	if len(gotSamples) != frames*2 {
		t.Fatalf("got %d samples, want %d", len(gotSamples), frames*2)
	}
	want := float32(16384) / 32767
	for i, s := range gotSamples {
		if diff := s - want; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("samples[%d] = %v, want %v", i, s, want)
		}
	}
}

func TestSoloIsolation(t *testing.T) {
	eng, backend := newTestEngine(t, testConfig())

	a := addConstantPlayer(t, eng, 0.25, 480000)
	b := addConstantPlayer(t, eng, 0.5, 480000)
	a.Play()
	b.Play()

	const frames = 10
	out := make([]byte, frames*2*4)
	readFirst := func() float32 {
		backend.period(out, nil, frames)
		return math.Float32frombits(binary.LittleEndian.Uint32(out))
	}

	if got := readFirst(); got != 0.75 {
		t.Fatalf("mixed render = %v, want 0.75", got)
	}

	eng.SoloComponent(a)
	if got := readFirst(); got != 0.25 {
		t.Fatalf("soloed render = %v, want 0.25 (a only)", got)
	}
	if b.Muted() || !b.Enabled() {
		t.Fatal("solo must not touch the other component's flags")
	}

	eng.UnsoloComponent(a)
	if got := readFirst(); got != 0.75 {
		t.Fatalf("unsoloed render = %v, want 0.75 again", got)
	}
}

func TestUnsoloComponent_WrongComponent(t *testing.T) {
	eng, _ := newTestEngine(t, testConfig())

	a := addConstantPlayer(t, eng, 0.25, 48000)
	b := addConstantPlayer(t, eng, 0.5, 48000)

	eng.SoloComponent(a)
	eng.UnsoloComponent(b)
	if eng.Soloed() != audio.Component(a) {
		t.Error("unsoloing a non-soloed component must not clear the override")
	}
}

func TestOnAudioProcessed_FanOutAndUnsubscribe(t *testing.T) {
	eng, backend := newTestEngine(t, testConfig())

	player := addConstantPlayer(t, eng, 0.5, 48000)
	player.Play()

	var first, second atomic.Int64
	u1 := eng.OnAudioProcessed(func(dir Direction, _ []float32, _ int) {
		if dir == Playback {
			first.Add(1)
		}
	})
	u2 := eng.OnAudioProcessed(func(Direction, []float32, int) {
		second.Add(1)
	})

	const frames = 10
	out := make([]byte, frames*2*4)
	backend.period(out, nil, frames)
	if first.Load() != 1 || second.Load() != 1 {
		t.Fatalf("handler calls = (%d, %d), want (1, 1)", first.Load(), second.Load())
	}

	u1()
	backend.period(out, nil, frames)
	if first.Load() != 1 || second.Load() != 2 {
		t.Fatalf("handler calls after unsubscribe = (%d, %d), want (1, 2)",
			first.Load(), second.Load())
	}

	u2()
	backend.period(out, nil, frames)
	if second.Load() != 2 {
		t.Errorf("unsubscribed handler still called")
	}
}

func TestPumpBackend_Lifecycle(t *testing.T) {
	backend := &mockPumpBackend{}
	eng, err := New(backend, testConfig(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for backend.pumps.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("pump goroutine never ran")
		}
		time.Sleep(time.Millisecond)
	}
	if backend.started != 1 {
		t.Fatalf("backend started %d times, want 1", backend.started)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if backend.stopped != 1 || backend.closed != 1 {
		t.Fatalf("backend stopped %d times, closed %d times, want 1 and 1",
			backend.stopped, backend.closed)
	}

	// Close joined the goroutine; no pumps happen afterwards.
	after := backend.pumps.Load()
	time.Sleep(10 * time.Millisecond)
	if backend.pumps.Load() != after {
		t.Error("pump goroutine survived Close")
	}
}

func TestPumpBackend_StartFailure(t *testing.T) {
	startErr := errors.New("device busy")
	backend := &mockPumpBackend{mockBackend: mockBackend{startErr: startErr}}

	if _, err := New(backend, testConfig(), nil); !errors.Is(err, startErr) {
		t.Fatalf("New() error = %v, want %v", err, startErr)
	}

	eng, err := New(&mockBackend{}, testConfig(), nil)
	if err != nil {
		t.Fatalf("New() after pump start failure error = %v", err)
	}
	eng.Close()
}

// TestPlaybackScenario renders a 4-second stereo source at speed 2.0
// through the engine: the source must drain in exactly 2 seconds of
// output, fire PlaybackEnded once, and leave only silence behind.
func TestPlaybackScenario(t *testing.T) {
	eng, backend := newTestEngine(t, testConfig())

	const (
		totalFrames  = 192000 // 4s at 48kHz
		periodFrames = 480    // 10ms
	)
	provider := audiotest.NewConstantProvider(0.5, 48000, 2, totalFrames)
	player, err := audio.NewPlayer(provider)
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	if err := player.SetSpeed(2.0); err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}
	if err := eng.Master().AddComponent(player); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}

	var ended atomic.Int64
	player.SetOnPlaybackEnded(func() { ended.Add(1) })

	player.Play()

	out := make([]byte, periodFrames*2*4)
	firstSample := func() float32 {
		backend.period(out, nil, periodFrames)
		return math.Float32frombits(binary.LittleEndian.Uint32(out))
	}

	// 2 seconds of output = 200 periods carrying signal.
	for i := 0; i < 200; i++ {
		if got := firstSample(); got != 0.5 {
			t.Fatalf("period %d starts with %v, want 0.5", i, got)
		}
	}
	if ended.Load() != 0 {
		t.Fatal("PlaybackEnded fired before the source drained")
	}

	// The next period exhausts the source.
	if got := firstSample(); got != 0 {
		t.Fatalf("post-drain period starts with %v, want silence", got)
	}
	if ended.Load() != 1 {
		t.Fatalf("PlaybackEnded fired %d times, want 1", ended.Load())
	}
	if player.State() != audio.Stopped {
		t.Fatalf("player state = %v, want Stopped", player.State())
	}

	for i := 0; i < 5; i++ {
		if got := firstSample(); got != 0 {
			t.Fatalf("period after stop starts with %v, want silence", got)
		}
	}
	if ended.Load() != 1 {
		t.Errorf("PlaybackEnded fired %d times in total, want 1", ended.Load())
	}
}

// addConstantPlayer attaches a player over a constant-valued stereo
// provider to the master mixer.
func addConstantPlayer(t *testing.T, eng *Engine, value float32, frames int64) *audio.Player {
	t.Helper()

	player, err := audio.NewPlayer(audiotest.NewConstantProvider(value, 48000, 2, frames))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	if err := eng.Master().AddComponent(player); err != nil {
		t.Fatalf("AddComponent() error = %v", err)
	}
	return player
}
