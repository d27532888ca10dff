package main

type envelopePhase int

const (
	phaseAttack envelopePhase = iota
	phaseRelease
	phaseDone
)

// envelope is the attack/release gain ramp of one voice. There is no
// explicit sustain phase: attack exhausted without a release requested
// means constant full gain.
type envelope struct {
	phase            envelopePhase
	attackTime       float64
	releaseTime      float64
	attackRemaining  float64
	releaseRemaining float64
}

func newEnvelope(attackTime, releaseTime float64) envelope {
	return envelope{
		phase:           phaseAttack,
		attackTime:      attackTime,
		releaseTime:     releaseTime,
		attackRemaining: attackTime,
	}
}

// release starts the fade out, discarding any attack still in progress.
// The ramp restarts from full scale, not from the current gain, so a
// release during the attack produces an audible jump. Once releasing,
// further calls have no effect.
func (e *envelope) release() {
	if e.phase != phaseAttack {
		return
	}
	e.phase = phaseRelease
	e.releaseRemaining = e.releaseTime
}

// step advances the envelope by a block of seconds and returns the raw
// gain at the block's first and last sample. ok is false once the
// release has run out, the voice then renders nothing and is finished
// for good.
func (e *envelope) step(seconds float64) (start, end float64, ok bool) {
	switch e.phase {
	case phaseDone:
		return 0, 0, false
	case phaseRelease:
		if e.releaseRemaining <= 0 {
			e.phase = phaseDone
			return 0, 0, false
		}
		start = e.releaseRemaining / e.releaseTime
		e.releaseRemaining -= seconds
		end = e.releaseRemaining / e.releaseTime
		if e.releaseRemaining < 0 {
			e.releaseRemaining = 0
		}
		return start, end, true
	}
	if e.attackRemaining <= 0 {
		// sustain
		return 1, 1, true
	}
	start = 1 - e.attackRemaining/e.attackTime
	e.attackRemaining -= seconds
	end = 1 - e.attackRemaining/e.attackTime
	return start, end, true
}

func (e *envelope) done() bool {
	return e.phase == phaseDone
}

// voice is one sounding note. Frequency and waveform are fixed at
// creation and never recomputed.
type voice struct {
	key  uint8
	freq float64
	wave waveform
	tbl  *wavetable
	env  envelope
}

func newVoice(key uint8, wave waveform, tbl *wavetable, attackTime, releaseTime float64) *voice {
	return &voice{
		key:  key,
		freq: keyToFreq(key),
		wave: wave,
		tbl:  tbl,
		env:  newEnvelope(attackTime, releaseTime),
	}
}

func (v *voice) release() {
	v.env.release()
}

func (v *voice) done() bool {
	return v.env.done()
}

// render writes the voice's next block into dst and reports false once
// there is nothing left to play. The gain is interpolated between the
// block's endpoint values and clamped per sample, so an attack that
// completes mid block flattens at full scale instead of overshooting.
func (v *voice) render(dst []float32, times []float64, seconds float64) bool {
	start, end, ok := v.env.step(seconds)
	if !ok {
		return false
	}
	v.wave.fill(dst, times, v.freq, v.tbl)
	if start == 1 && end == 1 {
		return true
	}
	step := 0.0
	if len(dst) > 1 {
		step = (end - start) / float64(len(dst)-1)
	}
	for i := range dst {
		gain := start + step*float64(i)
		if gain < 0 {
			gain = 0
		} else if gain > 1 {
			gain = 1
		}
		dst[i] *= float32(gain)
	}
	return true
}
