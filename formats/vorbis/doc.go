// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio streams.
//
// The decoder wraps jfreymuth/oggvorbis and streams frames on demand.
// Vorbis decodes natively to float32, so samples pass through without
// rescaling:
//
//	file, _ := os.Open("audio.ogg")
//	provider, err := vorbis.Decoder{}.Decode(file)
//
// Seeking and Length are available when the input is an io.Seeker;
// unseekable inputs report Length -1 and refuse Seek.
package vorbis
