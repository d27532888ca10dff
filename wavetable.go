package main

import "math"

// wavetable holds one cycle of a reference waveform rendered at a fixed
// reference frequency. Built once at startup, read only afterwards.
type wavetable struct {
	samples []float32
	refFreq float64
	rate    float64
}

// newWavetable renders size samples of w at refFreq, spaced one sample
// period apart. A table can't source itself, waveTable falls back to
// sine.
func newWavetable(w waveform, refFreq float64, size int, rate float64) *wavetable {
	if w == waveTable {
		w = waveSine
	}
	times := make([]float64, size)
	for i := range times {
		times[i] = float64(i) / rate
	}
	samples := make([]float32, size)
	w.fill(samples, times, refFreq, nil)
	return &wavetable{samples: samples, refFreq: refFreq, rate: rate}
}

// fill looks each time up in the table. The virtual index advances at
// freq/refFreq table entries per sample period, neighbouring entries
// are interpolated linearly and the last entry wraps around to the
// first.
func (wt *wavetable) fill(dst []float32, times []float64, freq float64) {
	size := float64(len(wt.samples))
	for i, t := range times {
		pos := math.Mod(freq/wt.refFreq*t*wt.rate, size)
		i0 := int(pos)
		i1 := (i0 + 1) % len(wt.samples)
		frac := float32(pos - float64(i0))
		s0 := wt.samples[i0]
		dst[i] = s0 + (wt.samples[i1]-s0)*frac
	}
}
