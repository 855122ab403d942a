package relayer

import (
	"math"
	"time"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
)

// Backoff computes the delay before the next relay attempt from the number of
// attempts already made. A multiplier of 1 gives a fixed delay.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// BackoffFromConfig reads the backoff policy from the relay section
func BackoffFromConfig(cfg *config.RelayConfig) Backoff {
	return Backoff{
		Initial:    cfg.BackoffInitial,
		Max:        cfg.BackoffMax,
		Multiplier: cfg.BackoffMultiplier,
	}
}

// Delay returns min(Initial * Multiplier^(attempts-1), Max)
func (b Backoff) Delay(attempts uint32) time.Duration {
	if attempts == 0 {
		attempts = 1
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(b.Initial) * math.Pow(mult, float64(attempts-1))
	if b.Max > 0 && (math.IsInf(d, 0) || d > float64(b.Max)) {
		return b.Max
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}
