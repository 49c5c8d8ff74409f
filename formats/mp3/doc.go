// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio streams.
//
// The decoder is streaming: it wraps go-mp3 and produces frames on
// demand instead of decoding the whole file up front, so long files
// cost no more memory than short ones. Output is always stereo 16-bit
// at the file's sample rate, rescaled to float32.
//
//	file, _ := os.Open("audio.mp3")
//	provider, err := mp3.Decoder{}.Decode(file)
//
// Seeking and Length are available when the input is an io.Seeker
// (files are, network streams usually are not); unseekable inputs
// report Length -1 and refuse Seek.
package mp3
