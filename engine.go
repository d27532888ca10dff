package main

import (
	"log/slog"
	"sync/atomic"
)

type commandKind int

const (
	cmdTrigger commandKind = iota
	cmdRelease
)

type command struct {
	kind commandKind
	key  uint8
	v    *voice
}

// engine owns the audio path: the voice registry, the sample clock and
// the scratch buffers renderBlock works in. Control code talks to it
// through a buffered command queue, the audio path itself never takes
// a lock.
type engine struct {
	rate      float64
	commands  chan command
	reg       registry
	clock     int64
	times     []float64
	scratch   []float32
	underruns atomic.Int64
	dropped   atomic.Int64
}

func newEngine(rate float64, blockSize, queueSize int) *engine {
	return &engine{
		rate:     rate,
		commands: make(chan command, queueSize),
		times:    make([]float64, blockSize),
		scratch:  make([]float32, blockSize),
	}
}

// trigger hands a ready voice to the audio path.
func (e *engine) trigger(v *voice) {
	e.enqueue(command{kind: cmdTrigger, key: v.key, v: v})
}

// release asks the audio path to fade out the voice at key.
func (e *engine) release(key uint8) {
	e.enqueue(command{kind: cmdRelease, key: key})
}

// enqueue never blocks: a full queue drops the command, audio must not
// wait for a stalled control path.
func (e *engine) enqueue(cmd command) {
	select {
	case e.commands <- cmd:
	default:
		e.dropped.Add(1)
		slog.Warn("command queue full, dropping", "key", cmd.key)
	}
}

// drain applies every pending command, oldest first, before a block
// renders.
func (e *engine) drain() {
	for {
		select {
		case cmd := <-e.commands:
			switch cmd.kind {
			case cmdTrigger:
				e.reg.trigger(cmd.v)
			case cmdRelease:
				e.reg.release(cmd.key)
			}
		default:
			return
		}
	}
}

// renderBlock produces the next block of mono samples. It runs on the
// audio callback and must not allocate, lock or log.
func (e *engine) renderBlock(out []float32) {
	e.drain()
	n := len(out)
	times := e.times[:n]
	for i := range times {
		times[i] = float64(e.clock+int64(i)) / e.rate
	}
	for i := range out {
		out[i] = 0
	}
	active := e.reg.mix(out, e.scratch[:n], times, float64(n)/e.rate)
	// fixed 1/8 gain up to eight voices, exact 1/count beyond that
	norm := float32(1) / 8
	if active > 8 {
		norm = float32(1) / float32(active)
	}
	for i := range out {
		out[i] *= norm
	}
	e.clock += int64(n)
}
