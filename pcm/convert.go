// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/ik5/audmix/utils"
)

// Format identifies a device sample encoding. The ordinals match
// miniaudio's ma_format values so a Format can be handed to a backend
// without translation.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatU8
	FormatS16
	FormatS24
	FormatS32
	FormatF32
)

// BytesPerSample returns the storage size of one sample in this format.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatS32, FormatF32:
		return 4
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	}
	return "unknown"
}

// ParseFormat maps a format name (as used in configuration files) to a
// Format. Unknown names return ErrUnsupportedFormat.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "u8":
		return FormatU8, nil
	case "s16":
		return FormatS16, nil
	case "s24":
		return FormatS24, nil
	case "s32":
		return FormatS32, nil
	case "f32", "":
		return FormatF32, nil
	}
	return FormatUnknown, ErrUnsupportedFormat
}

// Validate reports whether f is a format this package can convert.
// Hot-path callers must validate at construction time; the conversion
// functions assume a validated format.
func Validate(f Format) error {
	if f < FormatU8 || f > FormatF32 {
		return ErrUnsupportedFormat
	}
	return nil
}

// ToDevice converts len(src) normalized float32 samples into dst using
// the fixed-point encoding f. Every sample is clamped to [-1, 1] before
// scaling. On success src is cleared to silence: the caller reuses it
// as render scratch on the next cycle and the graph mixes additively
// into it.
func ToDevice(src []float32, dst []byte, f Format) error {
	if err := Validate(f); err != nil {
		return err
	}
	if len(dst) < len(src)*f.BytesPerSample() {
		return ErrBufferSize
	}

	switch f {
	case FormatU8:
		for i, x := range src {
			// +0.5 rounds instead of truncating; truncation would bias
			// every reconstruction by half an LSB.
			dst[i] = byte(utils.Clamp(x)*127.5 + 127.5 + 0.5)
		}
	case FormatS16:
		for i, x := range src {
			v := int16(utils.Clamp(x) * 32767)
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
		}
	case FormatS24:
		for i, x := range src {
			v := int32(utils.Clamp(x) * 8388607)
			dst[3*i] = byte(v)
			dst[3*i+1] = byte(v >> 8)
			dst[3*i+2] = byte(v >> 16)
		}
	case FormatS32:
		for i, x := range src {
			v := int32(utils.Clamp(x) * 2147483647)
			binary.LittleEndian.PutUint32(dst[4*i:], uint32(v))
		}
	case FormatF32:
		for i, x := range src {
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(x))
		}
	}

	clear(src)
	return nil
}

// FromDevice converts len(dst) device samples from src into normalized
// float32. The 8-bit path adds triangular dither (difference of two
// independent uniform randoms, ±1 LSB peak) before rescaling to
// decorrelate quantization noise; wider formats use direct inverse
// scaling. 24-bit samples are sign-extended from the packed top bit.
func FromDevice(src []byte, dst []float32, f Format) error {
	if err := Validate(f); err != nil {
		return err
	}
	if len(src) < len(dst)*f.BytesPerSample() {
		return ErrBufferSize
	}

	switch f {
	case FormatU8:
		for i := range dst {
			d := rand.Float32() - rand.Float32()
			dst[i] = (float32(src[i]) + d - 127.5) / 127.5
		}
	case FormatS16:
		for i := range dst {
			v := int16(binary.LittleEndian.Uint16(src[2*i:]))
			dst[i] = float32(v) / 32767
		}
	case FormatS24:
		for i := range dst {
			v := int32(src[3*i]) | int32(src[3*i+1])<<8 | int32(src[3*i+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xffffff)
			}
			dst[i] = float32(v) / 8388607
		}
	case FormatS32:
		for i := range dst {
			v := int32(binary.LittleEndian.Uint32(src[4*i:]))
			dst[i] = float32(v) / 2147483647
		}
	case FormatF32:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	}

	return nil
}
