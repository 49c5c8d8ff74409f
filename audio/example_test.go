// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"

	"github.com/ik5/audmix/audio"
)

// Example_mixerGraph demonstrates building a small mixer graph and
// rendering one block of audio from it.
func Example_mixerGraph() {
	// Two in-memory sources playing at the same time.
	drums := audio.NewBufferProvider([]float32{0.25, 0.25, 0.25, 0.25}, 48000, 1)
	bass := audio.NewBufferProvider([]float32{0.5, 0.5, 0.5, 0.5}, 48000, 1)

	master := audio.NewMixer(1)

	p1, _ := audio.NewPlayer(drums)
	p2, _ := audio.NewPlayer(bass)
	master.AddComponent(p1)
	master.AddComponent(p2)

	p1.Play()
	p2.Play()

	// The engine normally calls Process from the device callback.
	out := make([]float32, 4)
	master.Process(out)

	fmt.Printf("mixed block: %v\n", out)
	// Output: mixed block: [0.75 0.75 0.75 0.75]
}

// Example_gainAndPeak shows attaching per-component processing stages.
func Example_gainAndPeak() {
	src := audio.NewBufferProvider([]float32{1.0, -1.0, 1.0, -1.0}, 48000, 1)

	player, _ := audio.NewPlayer(src)
	player.AddModifier(audio.NewGain(0.5))

	var peak audio.PeakAnalyzer
	player.AddAnalyzer(&peak)

	player.Play()

	out := make([]float32, 4)
	player.Process(out)

	fmt.Printf("peak after gain: %v\n", peak.Peak())
	// Output: peak after gain: 0.5
}

// Example_looping plays a two-sample region forever.
func Example_looping() {
	src := audio.NewBufferProvider([]float32{0.1, 0.2, 0.3, 0.4}, 48000, 1)

	player, _ := audio.NewPlayer(src)
	player.SetLooping(true)
	if err := player.SetLoopPoints(0, 2); err != nil {
		fmt.Printf("loop points: %v\n", err)
		return
	}
	player.Play()

	out := make([]float32, 6)
	player.Process(out)

	fmt.Printf("looped block: %v\n", out)
	// Output: looped block: [0.1 0.2 0.1 0.2 0.1 0.2]
}
