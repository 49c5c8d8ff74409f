// SPDX-License-Identifier: EPL-2.0

// Package audmix is a real-time audio engine: a composable graph of
// audio-producing components mixed together and exchanged with the
// hardware through a pluggable device backend.
//
// The root package holds the format registry and the Open helpers; the
// real machinery lives in the subpackages:
//   - audio: the graph core — Component, Mixer, Player, Provider, and
//     the rate/channel adapters.
//   - engine: device backends, the real-time hot path, soloing, and
//     YAML configuration.
//   - pcm: conversion between normalized float32 and the fixed-point
//     device encodings.
//   - formats/...: one decoder package per codec, plus a WAV encoder.
//
// # Quick Start
//
//	eng, err := engine.New(engine.NewMiniaudioBackend(logger),
//		engine.Config{SampleRate: 48000, Channels: 2}, logger)
//	if err != nil {
//		// handle error
//	}
//	defer eng.Close()
//
//	provider, err := audmix.Open("song.mp3")
//	if err != nil {
//		// handle error
//	}
//	provider = audmix.Adapt(provider, eng.SampleRate(), eng.Channels())
//
//	player, _ := audio.NewPlayer(provider)
//	eng.Master().AddComponent(player)
//	player.Play()
//
// # Opening Audio
//
// Open picks a decoder from DefaultRegistry by file extension; WAV,
// AIFF, MP3 and Ogg Vorbis are registered out of the box, and raw Opus
// packet streams are handled by formats/opus. Decoded audio rarely
// matches the engine format exactly — Adapt inserts the cubic
// resampler and the channel mixer only where the rates or layouts
// actually differ.
//
// # Building Graphs
//
// Components attach to mixers, mixers attach to the engine's master
// mixer, and every component carries ordered modifier and analyzer
// chains. See the audio package for the graph contract and the player
// semantics (variable speed, looping, seeking), and the engine package
// for the concurrency model.
package audmix
