package main

import (
	"fmt"
	"math"
)

// keyToFreq maps a MIDI key number to its equal tempered frequency,
// A4 (key 69) at 440 Hz.
func keyToFreq(key uint8) float64 {
	return 440 * math.Pow(2, (float64(key)-69)/12)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// pitchName renders a key number like "A4" for log output.
func pitchName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key/12)-1)
}
