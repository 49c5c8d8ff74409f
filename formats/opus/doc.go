// SPDX-License-Identifier: EPL-2.0

// Package opus decodes raw Opus packet streams.
//
// Unlike the file-oriented decoders, Opus input arrives as discrete
// packets (from an Ogg demuxer, an RTP session, or any other
// transport), so the entry point takes a PacketReader rather than an
// io.Reader:
//
//	provider, err := opus.NewProvider(packets, 48000, 2)
//
// The provider has live-source semantics: Length is -1 and Seek is not
// supported. Wrap it in a Player like any other provider; the player
// treats it as an endless stream until the PacketReader reports EOF.
package opus
