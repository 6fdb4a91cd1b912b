package alert

import (
	"math"
	"time"
)

// restartBackoff spaces out player restarts; the delay grows while the
// player keeps failing and resets after a clean run.
type restartBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func defaultRestartBackoff() restartBackoff {
	return restartBackoff{Initial: 250 * time.Millisecond, Max: 10 * time.Second, Multiplier: 2}
}

// delay returns the pause after the given number of consecutive failures.
func (b restartBackoff) delay(failures int) time.Duration {
	if failures <= 0 || b.Initial <= 0 {
		return b.Initial
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	d := float64(b.Initial) * math.Pow(mult, float64(failures))
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	return time.Duration(d)
}
