// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// ErrUnknownFormat indicates no decoder is registered for a format key
// or file extension.
var ErrUnknownFormat = errors.New("unknown audio format")

// DefaultRegistry maps format keys to the built-in decoders. Register
// additional decoders here to make them available to Open.
var DefaultRegistry = audio.NewRegistry()

func init() {
	DefaultRegistry.Register("wav", wav.Decoder{}.Decode)
	DefaultRegistry.Register("aiff", aiff.Decoder{}.Decode)
	DefaultRegistry.Register("aif", aiff.Decoder{}.Decode)
	DefaultRegistry.Register("mp3", mp3.Decoder{}.Decode)
	DefaultRegistry.Register("ogg", vorbis.Decoder{}.Decode)
	DefaultRegistry.Register("oga", vorbis.Decoder{}.Decode)
}

// Open opens an audio file, picking the decoder by file extension. The
// returned provider owns the file handle; Close releases both.
func Open(path string) (audio.Provider, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	open, ok := DefaultRegistry.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	p, err := open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &fileProvider{Provider: p, file: f}, nil
}

// OpenReader decodes a stream using the named format ("wav", "mp3",
// "ogg", ...). Streaming decoders keep reading from r, so it must stay
// open for the provider's lifetime.
func OpenReader(format string, r io.Reader) (audio.Provider, error) {
	open, ok := DefaultRegistry.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return open(r)
}

// Adapt wraps p so it delivers samples at the given rate and channel
// layout, inserting a resampler and a channel mixer only where the
// provider's native format differs. Use it to match decoders to the
// engine format before handing them to a Player.
func Adapt(p audio.Provider, sampleRate, channels int) audio.Provider {
	if p.SampleRate() != sampleRate {
		p = audio.NewResampler(p, sampleRate)
	}
	if p.Channels() != channels {
		p = audio.NewChannelMixer(p, channels)
	}
	return p
}

// fileProvider ties a file handle's lifetime to the provider decoded
// from it.
type fileProvider struct {
	audio.Provider
	file *os.File
}

func (fp *fileProvider) Close() error {
	err := fp.Provider.Close()
	if cerr := fp.file.Close(); err == nil {
		err = cerr
	}
	return err
}
