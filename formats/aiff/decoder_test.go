// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// encodeTestAiff writes a 16-bit PCM AIFF file and returns its bytes.
func encodeTestAiff(t *testing.T, sampleRate, channels int, samples []int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.aiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := goaiff.NewEncoder(f, sampleRate, 16, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           samples,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoder Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close() error = %v", err)
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

	pcm := []int{0, 8192, -8192, 16384, -16384, 32767}
	data := encodeTestAiff(t, 22050, 2, pcm)

	p, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer p.Close()

	if p.SampleRate() != 22050 || p.Channels() != 2 {
		t.Fatalf("metadata = (%d, %d), want (22050, 2)", p.SampleRate(), p.Channels())
	}
	if p.Length() != int64(len(pcm)) {
		t.Fatalf("Length() = %d, want %d", p.Length(), len(pcm))
	}

	got := make([]float32, len(pcm))
	n, err := p.ReadSamples(got)
	if n != len(pcm) || (err != nil && err != io.EOF) {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}

	const tolerance = 1.0 / 32768
	for i, v := range pcm {
		want := float32(v) / 32768
		if diff := got[i] - want; diff > tolerance || diff < -tolerance {
			t.Errorf("sample %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := encodeTestAiff(t, 8000, 1, []int{100, 200, 300})

	p, err := Decoder{}.Decode(bytes.NewBuffer(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer p.Close()

	if p.Length() != 3 {
		t.Errorf("Length() = %d, want 3", p.Length())
	}
}

func TestDecoder_NotAiff(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("definitely not an aiff file")))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
	}
}
