package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// demoNotes is the phrase writeWav renders, an A major arpeggio.
var demoNotes = []uint8{57, 61, 64, 69}

// writeWav renders the demo phrase offline through the normal engine
// path and writes it to path as 16 bit mono PCM.
func writeWav(path string, c *Config) error {
	wave, err := parseWaveform(c.Oscillator)
	if err != nil {
		return err
	}
	eng := newEngine(float64(c.SampleRate), c.BlockSize, commandQueueSize)
	tbl := newWavetable(waveSine, c.WavetableFrequency, c.WavetableSize, float64(c.SampleRate))

	out := make([]float32, c.BlockSize)
	var data []int
	render := func(blocks int) {
		for i := 0; i < blocks; i++ {
			eng.renderBlock(out)
			for _, s := range out {
				if s > 1 {
					s = 1
				} else if s < -1 {
					s = -1
				}
				data = append(data, int(s*32767))
			}
		}
	}
	blocks := func(seconds float64) int {
		return int(seconds*float64(c.SampleRate))/c.BlockSize + 1
	}

	for _, key := range demoNotes {
		eng.trigger(newVoice(key, wave, tbl, c.AttackSeconds, c.ReleaseSeconds))
		render(blocks(0.4))
		eng.release(key)
		render(blocks(c.ReleaseSeconds + 0.1))
	}
	// close with the full chord
	for _, key := range demoNotes {
		eng.trigger(newVoice(key, wave, tbl, c.AttackSeconds, c.ReleaseSeconds))
	}
	render(blocks(1.2))
	for _, key := range demoNotes {
		eng.release(key)
	}
	render(blocks(c.ReleaseSeconds + 0.2))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create wav: %w", err)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(f, c.SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("can't write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("can't finish wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("wrote demo wav", "path", path, "seconds", float64(len(data))/float64(c.SampleRate))
	return nil
}
