package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged bounded draws.
// All draws are logged at debug level with kind, bounds and value.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

func (r *Roller) record(kind Kind, lo, hi, value int) int {
	r.logger.Debug("dice roll", zap.Stringer("roll", Roll{Kind: kind, Lo: lo, Hi: hi, Value: value}))
	return value
}

// Range returns a uniform int in the inclusive range [lo, hi].
//
// Precondition: lo <= hi. Panics with "dice: Range called with lo > hi" otherwise.
func (r *Roller) Range(kind Kind, lo, hi int) int {
	if lo > hi {
		panic("dice: Range called with lo > hi")
	}
	return r.record(kind, lo, hi, lo+r.src.Intn(hi-lo+1))
}

// Percent returns a uniform int in [0, 100).
func (r *Roller) Percent() int {
	return r.record(KindPercent, 0, 99, r.src.Intn(100))
}

// Choice returns a uniform index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Choice(n int) int {
	return r.record(KindChoice, 0, n-1, r.src.Intn(n))
}

// Weighted returns an index into weights chosen with probability proportional
// to its weight, by cumulative sampling over a uniform draw in [0, total).
// Non-positive weights are never chosen.
//
// Precondition: at least one weight is > 0.
func (r *Roller) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		panic("dice: Weighted called without a positive weight")
	}
	draw := r.src.Intn(total)
	r.record(KindWeighted, 0, total-1, draw)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if draw < w {
			return i
		}
		draw -= w
	}
	// unreachable: draw < total
	return len(weights) - 1
}
