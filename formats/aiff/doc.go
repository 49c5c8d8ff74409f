// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF audio files.
//
// Decoding loads the whole file into memory through go-audio/aiff and
// returns a fully seekable provider:
//
//	file, _ := os.Open("audio.aiff")
//	provider, err := aiff.Decoder{}.Decode(file)
//
// Samples are normalized float32 in [-1, 1]; 8, 16, 24 and 32-bit PCM
// inputs are supported.
package aiff
