package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// dispatcher turns MIDI messages into engine commands. It owns the
// parameters new voices are created with, guarded by mu because the
// listener and the config reload both touch them.
type dispatcher struct {
	eng *engine
	tbl *wavetable

	mu       sync.Mutex
	wave     waveform
	attack   float64
	release  float64
	controls ControlsConfig

	stopOnce sync.Once
	stopped  chan struct{}
}

func newDispatcher(eng *engine, tbl *wavetable, dyn *DynamicConfig) (*dispatcher, error) {
	d := &dispatcher{
		eng:     eng,
		tbl:     tbl,
		stopped: make(chan struct{}),
	}
	if err := d.applyDynamic(dyn); err != nil {
		return nil, err
	}
	return d, nil
}

// applyDynamic takes over the reloadable settings. Safe while the
// listener runs, voices already sounding keep the parameters they
// started with.
func (d *dispatcher) applyDynamic(dyn *DynamicConfig) error {
	w, err := parseWaveform(dyn.Oscillator)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wave = w
	d.attack = dyn.AttackSeconds
	d.release = dyn.ReleaseSeconds
	d.controls = dyn.Controls
	return nil
}

// handle is called by the MIDI listener for every inbound message.
func (d *dispatcher) handle(msg midi.Message) {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		d.noteOn(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		d.noteOff(key)
	case msg.GetControlChange(&ch, &cc, &val):
		d.control(cc, val)
	case msg.GetPitchBend(&ch, &rel, &abs):
		// no pitch bend synthesis
		slog.Debug("pitch bend ignored", "value", rel)
	default:
		slog.Debug("unhandled midi message", "msg", msg.String())
	}
}

func (d *dispatcher) noteOn(key, velocity uint8) {
	d.mu.Lock()
	wave, attack, release := d.wave, d.attack, d.release
	d.mu.Unlock()
	slog.Debug("note on", "key", key, "pitch", pitchName(key), "velocity", velocity, "waveform", wave)
	d.eng.trigger(newVoice(key, wave, d.tbl, attack, release))
}

func (d *dispatcher) noteOff(key uint8) {
	slog.Debug("note off", "key", key, "pitch", pitchName(key))
	d.eng.release(key)
}

func (d *dispatcher) control(cc, value uint8) {
	d.mu.Lock()
	controls := d.controls
	d.mu.Unlock()
	switch cc {
	case controls.Stop:
		slog.Info("stop control pressed")
		d.stop()
	case controls.OscillatorNext:
		d.cycleWave(1)
	case controls.OscillatorPrev:
		d.cycleWave(-1)
	default:
		slog.Debug("control change ignored", "controller", cc, "value", value)
	}
}

func (d *dispatcher) cycleWave(dir int) {
	d.mu.Lock()
	if dir > 0 {
		d.wave = d.wave.next()
	} else {
		d.wave = d.wave.prev()
	}
	w := d.wave
	d.mu.Unlock()
	slog.Info("oscillator changed", "waveform", w)
}

// stop signals the main loop to shut down. Safe to call repeatedly.
func (d *dispatcher) stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}

// listen starts handling messages from in. The returned function stops
// the listener and closes the port.
func (d *dispatcher) listen(in drivers.In) (func(), error) {
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		d.handle(msg)
	}, midi.HandleError(func(err error) {
		// the input is gone, playing on deaf makes no sense
		slog.Error("midi listener failed, stopping", "err", err)
		d.stop()
	}))
	if err != nil {
		return nil, fmt.Errorf("can't listen on %q: %w", in.String(), err)
	}
	return func() {
		stop()
		// ignore Close error
		in.Close()
	}, nil
}

// openInput finds and opens the input port whose name contains name,
// case insensitive, or the first available port when name is empty.
func openInput(name string) (drivers.In, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("can't list midi inputs: %w", err)
	}
	if len(ins) == 0 {
		return nil, fmt.Errorf("no midi inputs")
	}
	var found drivers.In
	if name == "" {
		found = ins[0]
	} else {
		for _, in := range ins {
			if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
				found = in
				break
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("midi input %q not found, have: %s", name, portNames(ins))
	}
	if err := found.Open(); err != nil {
		return nil, fmt.Errorf("can't open midi input %q: %w", found.String(), err)
	}
	return found, nil
}

func portNames(ins []drivers.In) string {
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return strings.Join(names, ", ")
}

// listInputs prints the available input ports, one per line.
func listInputs() error {
	ins, err := drivers.Ins()
	if err != nil {
		return fmt.Errorf("can't list midi inputs: %w", err)
	}
	if len(ins) == 0 {
		fmt.Println("no midi inputs")
		return nil
	}
	for _, in := range ins {
		fmt.Println(in.String())
	}
	return nil
}
