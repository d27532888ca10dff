package main

import (
	"math"
	"testing"
)

// unisonVoice bypasses the key to frequency mapping so several voices
// can share one frequency.
func unisonVoice(key uint8, freq float64) *voice {
	return &voice{key: key, freq: freq, wave: waveSquare, env: newEnvelope(0, 0.1)}
}

func TestNormalizationDividesBy8UpToEight(t *testing.T) {
	rate := 48000.0
	n := 16
	eng := newEngine(rate, n, 32)
	for k := uint8(0); k < 4; k++ {
		eng.trigger(unisonVoice(k, 440))
	}
	out := make([]float32, n)
	eng.renderBlock(out)
	// four full scale voices in phase, divided by the fixed 8
	for i, s := range out {
		if a := math.Abs(float64(s)); math.Abs(a-0.5) > 1e-6 {
			t.Fatalf("sample %d: expected amplitude 0.5, got %v", i, s)
		}
	}
}

func TestNormalizationExactlyEightIsUnity(t *testing.T) {
	rate := 48000.0
	n := 16
	eng := newEngine(rate, n, 32)
	for k := uint8(0); k < 8; k++ {
		eng.trigger(unisonVoice(k, 440))
	}
	out := make([]float32, n)
	eng.renderBlock(out)
	for i, s := range out {
		if a := math.Abs(float64(s)); math.Abs(a-1) > 1e-6 {
			t.Fatalf("sample %d: expected amplitude 1, got %v", i, s)
		}
	}
}

func TestNormalizationDividesByCountAboveEight(t *testing.T) {
	rate := 48000.0
	n := 16
	eng := newEngine(rate, n, 32)
	for k := uint8(0); k < 9; k++ {
		eng.trigger(unisonVoice(k, 440))
	}
	out := make([]float32, n)
	eng.renderBlock(out)
	// nine voices divided by nine, not by eight
	for i, s := range out {
		if a := math.Abs(float64(s)); math.Abs(a-1) > 1e-6 {
			t.Fatalf("sample %d: expected amplitude 1, got %v", i, s)
		}
	}
}

func TestSampleClockContinuity(t *testing.T) {
	rate := 48000.0
	n := 16
	eng := newEngine(rate, n, 32)
	eng.trigger(unisonVoice(69, 440))
	first := make([]float32, n)
	second := make([]float32, n)
	eng.renderBlock(first)
	eng.renderBlock(second)

	want := make([]float32, 2*n)
	waveSquare.fill(want, makeTimes(0, 2*n, rate), 440, nil)
	for i := 0; i < n; i++ {
		if math.Abs(float64(first[i]-want[i]/8)) > 1e-6 {
			t.Fatalf("first block sample %d: expected %v, got %v", i, want[i]/8, first[i])
		}
		if math.Abs(float64(second[i]-want[n+i]/8)) > 1e-6 {
			t.Fatalf("second block sample %d: expected %v, got %v", i, want[n+i]/8, second[i])
		}
	}
	if eng.clock != int64(2*n) {
		t.Fatalf("clock: expected %d, got %d", 2*n, eng.clock)
	}
}

func TestCommandsApplyBeforeRender(t *testing.T) {
	eng := newEngine(48000, 16, 32)
	eng.trigger(newVoice(60, waveSine, nil, 0.02, 0.1))
	eng.release(60)
	out := make([]float32, 16)
	eng.renderBlock(out)
	v := eng.reg.voices[60]
	if v == nil {
		t.Fatalf("voice not installed")
	}
	if v.env.phase != phaseRelease {
		t.Fatalf("release queued before the render was not applied")
	}
}

func TestEnqueueNeverBlocks(t *testing.T) {
	eng := newEngine(48000, 16, 1)
	eng.release(1)
	eng.release(2) // queue full, dropped instead of blocking
	if got := eng.dropped.Load(); got != 1 {
		t.Fatalf("expected 1 dropped command, got %d", got)
	}
	out := make([]float32, 16)
	eng.renderBlock(out)
	if got := eng.reg.active(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}

func TestTriggerRenderReleaseScenario(t *testing.T) {
	rate := 48000.0
	n := 16
	attack := 0.02
	release := 0.1
	eng := newEngine(rate, n, 32)
	tbl := newWavetable(waveSine, 375, 128, rate)
	eng.trigger(newVoice(69, waveSine, tbl, attack, release))

	out := make([]float32, n)
	eng.renderBlock(out)
	// first block: sine at 440 Hz scaled by the attack ramp and the
	// 1/8 divisor
	dt := float64(n) / rate
	endGain := dt / attack
	for i := range out {
		gain := endGain * float64(i) / float64(n-1)
		want := math.Sin(2*math.Pi*440*float64(i)/rate) * gain / 8
		if math.Abs(float64(out[i])-want) > 1e-5 {
			t.Fatalf("sample %d: expected %v, got %v", i, want, out[i])
		}
	}

	eng.release(69)
	blocks := int(release/dt) + 2
	for i := 0; i < blocks; i++ {
		eng.renderBlock(out)
	}
	if got := eng.reg.active(); got != 0 {
		t.Fatalf("voice not pruned after the release ran out, active %d", got)
	}
}
