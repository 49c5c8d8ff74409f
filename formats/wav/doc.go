// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes WAV audio files.
//
// Decoding loads the whole file into memory through go-audio/wav and
// returns a fully seekable provider, which keeps Player seeking and
// loop points exact for WAV sources:
//
//	file, _ := os.Open("audio.wav")
//	provider, err := wav.Decoder{}.Decode(file)
//
// Samples are normalized float32 in [-1, 1]; 8, 16, 24 and 32-bit PCM
// inputs are supported.
//
// Encoding goes the other way: Encoder accepts interleaved float32
// blocks, clamps and widens them to 16-bit PCM, and writes an
// incrementally growing WAV file. Wired to an engine audio-processed
// handler it records whatever the device plays or captures:
//
//	enc := wav.NewEncoder(file, 48000, 2)
//	defer enc.Close()
//	unsubscribe := eng.OnAudioProcessed(func(dir engine.Direction, samples []float32, _ int) {
//		if dir == engine.Record {
//			enc.WriteSamples(samples)
//		}
//	})
package wav
