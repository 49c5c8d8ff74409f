// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// encodeTestWav writes a 16-bit PCM WAV file and returns its bytes.
func encodeTestWav(t *testing.T, sampleRate, channels int, samples []float32) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := NewEncoder(f, sampleRate, channels)
	if err := enc.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	want := []float32{0.0, 0.25, -0.25, 0.5, -0.5, 0.9}
	data := encodeTestWav(t, 44100, 2, want)

	p, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer p.Close()

	if p.SampleRate() != 44100 || p.Channels() != 2 {
		t.Fatalf("metadata = (%d, %d), want (44100, 2)", p.SampleRate(), p.Channels())
	}
	if p.Length() != int64(len(want)) {
		t.Fatalf("Length() = %d, want %d", p.Length(), len(want))
	}
	if !p.CanSeek() {
		t.Fatal("decoded WAV provider must be seekable")
	}

	got := make([]float32, len(want))
	n, err := p.ReadSamples(got)
	if n != len(want) || (err != nil && err != io.EOF) {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}

	const tolerance = 1.0 / 32767 // one 16-bit quantization step
	for i := range want {
		if diff := got[i] - want[i]; diff > tolerance || diff < -tolerance {
			t.Errorf("sample %d = %v, want %v ±%v", i, got[i], want[i], tolerance)
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := encodeTestWav(t, 8000, 1, []float32{0.1, 0.2, 0.3})

	// bytes.Buffer is not an io.ReadSeeker, forcing the buffering path.
	p, err := Decoder{}.Decode(bytes.NewBuffer(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer p.Close()

	if p.Length() != 3 {
		t.Errorf("Length() = %d, want 3", p.Length())
	}
}

func TestDecoder_NotWav(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not a wav file")))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestEncoder_ClampsOutOfRange(t *testing.T) {
	t.Parallel()

	data := encodeTestWav(t, 8000, 1, []float32{2.0, -2.0})

	p, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer p.Close()

	got := make([]float32, 2)
	if n, err := p.ReadSamples(got); n != 2 || (err != nil && err != io.EOF) {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}
	if got[0] < 0.99 || got[1] > -0.99 {
		t.Errorf("clamped samples = %v, want ~(1, -1)", got)
	}
}
