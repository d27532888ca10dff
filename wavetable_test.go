package main

import (
	"math"
	"testing"
)

func TestWavetableReproducesReference(t *testing.T) {
	rate := 48000.0
	refFreq := 375.0
	size := 128 // exactly one cycle: 48000/375
	tbl := newWavetable(waveSine, refFreq, size, rate)
	times := makeTimes(0, size, rate)
	dst := make([]float32, size)
	tbl.fill(dst, times, refFreq)
	for i := range dst {
		if math.Abs(float64(dst[i]-tbl.samples[i])) > 1e-6 {
			t.Fatalf("sample %d: table %v, rendered %v", i, tbl.samples[i], dst[i])
		}
	}
}

func TestWavetableDoubleFrequencyHalvesCycle(t *testing.T) {
	rate := 48000.0
	refFreq := 375.0
	size := 128
	tbl := newWavetable(waveSine, refFreq, size, rate)
	times := makeTimes(0, size, rate)
	dst := make([]float32, size)
	tbl.fill(dst, times, 2*refFreq)
	// the virtual index advances two entries per sample
	for i := range dst {
		want := tbl.samples[(2*i)%size]
		if math.Abs(float64(dst[i]-want)) > 1e-6 {
			t.Fatalf("sample %d: expected %v, got %v", i, want, dst[i])
		}
	}
	// so the rendered cycle repeats after size/2 samples
	for i := 0; i < size/2; i++ {
		if math.Abs(float64(dst[i]-dst[i+size/2])) > 1e-6 {
			t.Fatalf("cycle not halved at sample %d", i)
		}
	}
}

func TestWavetableWrapsAtBoundary(t *testing.T) {
	// freq == refFreq == rate walks the table one entry per unit time
	tbl := &wavetable{samples: []float32{0, 2, 4, -2}, refFreq: 1, rate: 1}
	times := []float64{0, 0.5, 1, 2.5, 3, 3.5, 4}
	want := []float32{0, 1, 2, 1, -2, -1, 0}
	dst := make([]float32, len(times))
	tbl.fill(dst, times, 1)
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("t=%v: expected %v, got %v", times[i], want[i], dst[i])
		}
	}
}

func TestWavetableNeverSourcesItself(t *testing.T) {
	rate := 48000.0
	sine := newWavetable(waveSine, 375, 128, rate)
	tbl := newWavetable(waveTable, 375, 128, rate)
	for i := range sine.samples {
		if tbl.samples[i] != sine.samples[i] {
			t.Fatalf("sample %d: expected sine fallback, got %v", i, tbl.samples[i])
		}
	}
}
