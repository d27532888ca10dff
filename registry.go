package main

// registry holds at most one live voice per MIDI key. It belongs to
// the audio path alone, the control path reaches it through the
// engine's command queue.
type registry struct {
	voices [128]*voice
}

// trigger installs v for its key, replacing any earlier voice outright
// even if that voice was still fading out.
func (r *registry) trigger(v *voice) {
	r.voices[v.key] = v
}

// release starts the fade out for key, a no-op when the key is silent.
func (r *registry) release(key uint8) {
	if v := r.voices[key]; v != nil {
		v.release()
	}
}

func (r *registry) active() int {
	n := 0
	for _, v := range r.voices {
		if v != nil {
			n++
		}
	}
	return n
}

// mix adds every voice's next block into out and returns the number of
// voices still live afterwards. Finished voices are dropped in a second
// pass, never while iterating.
func (r *registry) mix(out, scratch []float32, times []float64, seconds float64) int {
	for _, v := range r.voices {
		if v == nil {
			continue
		}
		if !v.render(scratch, times, seconds) {
			continue
		}
		for i := range out {
			out[i] += scratch[i]
		}
	}
	n := 0
	for i, v := range r.voices {
		if v == nil {
			continue
		}
		if v.done() {
			r.voices[i] = nil
			continue
		}
		n++
	}
	return n
}
