package main

import (
	"fmt"
	"math"
)

// waveform selects one of the fixed set of generators. A voice captures
// the selection when it is created, cycling the global selection only
// affects notes played afterwards.
type waveform int

const (
	waveSine waveform = iota
	waveSquare
	waveSaw
	waveTable
	waveformCount
)

var waveformNames = [waveformCount]string{"sine", "square", "saw", "table"}

func (w waveform) String() string {
	if w < 0 || w >= waveformCount {
		return fmt.Sprintf("waveform(%d)", int(w))
	}
	return waveformNames[w]
}

func parseWaveform(s string) (waveform, error) {
	for i, name := range waveformNames {
		if s == name {
			return waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown oscillator: %q", s)
}

func (w waveform) next() waveform {
	return (w + 1) % waveformCount
}

func (w waveform) prev() waveform {
	return (w + waveformCount - 1) % waveformCount
}

// sawAt is the rising ramp (f·t mod 2) − 1.
func sawAt(freq, t float64) float64 {
	return math.Mod(freq*t, 2) - 1
}

// fill writes one sample per entry of times into dst. len(dst) must be
// len(times). tbl is only consulted by waveTable.
func (w waveform) fill(dst []float32, times []float64, freq float64, tbl *wavetable) {
	switch w {
	case waveSine:
		for i, t := range times {
			dst[i] = float32(math.Sin(2 * math.Pi * freq * t))
		}
	case waveSquare:
		for i, t := range times {
			if sawAt(freq, t) >= 0 {
				dst[i] = 1
			} else {
				dst[i] = -1
			}
		}
	case waveSaw:
		for i, t := range times {
			dst[i] = float32(sawAt(freq, t))
		}
	case waveTable:
		tbl.fill(dst, times, freq)
	default:
		panic(fmt.Sprintf("unknown waveform: %d", int(w)))
	}
}
