package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const defaultConfig = `
{
	"sampleRate": 48000,
	"blockSize": 16,
	"wavetableFrequency": 375,
	"wavetableSize": 128,
	"midiPort": "",
	"watchConfig": true,
	"attackSeconds": 0.02,
	"releaseSeconds": 0.1,
	"oscillator": "sine",
	"controls": {
		"stop": 23,
		"oscillatorNext": 21,
		"oscillatorPrev": 22
	}
}
`

// StaticConfig only takes effect at startup, changes on reload are
// reported and ignored.
type StaticConfig struct {
	SampleRate         int     `json:"sampleRate"`
	BlockSize          int     `json:"blockSize"`
	WavetableFrequency float64 `json:"wavetableFrequency"`
	WavetableSize      int     `json:"wavetableSize"`
	MidiPort           string  `json:"midiPort"`
	WatchConfig        bool    `json:"watchConfig"`
}

// ControlsConfig maps MIDI control change numbers to their actions.
// The defaults match the transport keys of an Oxygen 8 keyboard.
type ControlsConfig struct {
	Stop           uint8 `json:"stop"`
	OscillatorNext uint8 `json:"oscillatorNext"`
	OscillatorPrev uint8 `json:"oscillatorPrev"`
}

// DynamicConfig is picked up again on every reload. Voices already
// sounding keep the envelope they started with.
type DynamicConfig struct {
	AttackSeconds  float64        `json:"attackSeconds"`
	ReleaseSeconds float64        `json:"releaseSeconds"`
	Oscillator     string         `json:"oscillator"`
	Controls       ControlsConfig `json:"controls"`
}

type Config struct {
	StaticConfig
	DynamicConfig
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sampleRate must be positive, was: %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("blockSize must be positive, was: %d", c.BlockSize)
	}
	if c.WavetableFrequency <= 0 {
		return fmt.Errorf("wavetableFrequency must be positive, was: %g", c.WavetableFrequency)
	}
	if c.WavetableSize < 2 {
		return fmt.Errorf("wavetableSize must be at least 2, was: %d", c.WavetableSize)
	}
	if c.AttackSeconds < 0 {
		return fmt.Errorf("attackSeconds must not be negative, was: %g", c.AttackSeconds)
	}
	if c.ReleaseSeconds < 0 {
		return fmt.Errorf("releaseSeconds must not be negative, was: %g", c.ReleaseSeconds)
	}
	if _, err := parseWaveform(c.Oscillator); err != nil {
		return err
	}
	return nil
}

func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	var c Config
	err = json.Unmarshal(data, &c)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config invalid: %w", err)
	}
	return &c, nil
}
