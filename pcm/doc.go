// SPDX-License-Identifier: EPL-2.0

// Package pcm converts between the engine's normalized float32 sample
// domain and the fixed-point encodings exchanged with audio devices.
//
// All intermediate processing in this module happens on interleaved
// float32 samples in the range [-1.0, 1.0]. Devices, however, commonly
// run in unsigned 8-bit, signed 16/24/32-bit, or native float formats.
// This package provides the two-way conversion at that boundary:
//
//	// device -> engine
//	err := pcm.FromDevice(deviceBytes, floatBuf, pcm.FormatS16)
//
//	// engine -> device
//	err := pcm.ToDevice(floatBuf, deviceBytes, pcm.FormatS16)
//
// Both directions operate on caller-supplied buffers and never allocate,
// which makes them safe to call from a real-time audio callback.
//
// # Scaling
//
// Conversion uses the full symmetric range of each width:
//
//	u8:  x*127.5 + 127.5   (unsigned, biased)
//	s16: x*32767
//	s24: x*8388607         (packed little-endian, 3 bytes per sample)
//	s32: x*2147483647
//
// ToDevice clamps every sample to [-1, 1] before scaling, so a graph
// that overshoots produces hard clipping rather than integer wraparound.
// After conversion the float buffer is cleared back to silence; the
// engine reuses it as scratch on the next cycle.
//
// # Dither
//
// FromDevice applies triangular dither (the difference of two
// independent uniform randoms, ±1 LSB) on the 8-bit path before
// rescaling. 8-bit quantization noise is otherwise strongly correlated
// with the signal; the dither is zero-mean, so it decorrelates the
// noise without biasing the reconstruction. Wider formats convert by
// direct inverse scaling.
//
// # Validation
//
// Validate rejects unknown widths with ErrUnsupportedFormat. Callers
// that sit on a hot path are expected to validate once at construction
// time so the conversion itself cannot fail.
package pcm
