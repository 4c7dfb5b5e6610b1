package effects

import "math"

// Limiter keeps summed voices under a ceiling. Both channels share one
// gain so the stereo image does not shift.
type Limiter struct {
	ceiling float32
	attack  float32 // coefficient
	release float32 // coefficient
	env     float32
}

// NewLimiter creates a stereo-linked peak limiter.
// ceilingDB: output ceiling in dBFS (e.g. -1)
// attackMs, releaseMs: envelope follower times
func NewLimiter(sampleRate int, ceilingDB, attackMs, releaseMs float32) *Limiter {
	sr := float64(sampleRate)
	return &Limiter{
		ceiling: float32(math.Pow(10, float64(ceilingDB)/20)),
		attack:  timeCoeff(attackMs, sr),
		release: timeCoeff(releaseMs, sr),
	}
}

func DefaultLimiter(sampleRate int) *Limiter {
	return NewLimiter(sampleRate, -0.5, 0.5, 80)
}

func timeCoeff(ms float32, sampleRate float64) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1.0 - math.Exp(-1.0/(float64(ms)*sampleRate/1000.0)))
}

func (lim *Limiter) Process(l, r float32) (float32, float32) {
	peak := max(abs32(l), abs32(r))
	if peak > lim.env {
		lim.env += lim.attack * (peak - lim.env)
	} else {
		lim.env += lim.release * (peak - lim.env)
	}
	gain := float32(1)
	if lim.env > lim.ceiling {
		gain = lim.ceiling / lim.env
	}
	return clampCeil(l*gain, lim.ceiling), clampCeil(r*gain, lim.ceiling)
}

func (lim *Limiter) Reset() {
	lim.env = 0
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// clampCeil catches transients faster than the attack.
func clampCeil(v, ceil float32) float32 {
	if v > ceil {
		return ceil
	}
	if v < -ceil {
		return -ceil
	}
	return v
}
