package engine

import (
	"sync/atomic"
	"time"
)

// MeanRate accumulates accepted-share difficulty and derives a rate from it:
// the difficulty sum divided by the time elapsed since the first share. It
// applies no difficulty-to-hashes factor. Safe for concurrent use.
type MeanRate struct {
	totalWork       atomic.Uint64
	firstSubmitTime atomic.Int64 // unix seconds
	lastSubmitTime  atomic.Int64 // unix seconds
}

// NewMeanRate creates a counter with no accumulated work yet.
func NewMeanRate() *MeanRate {
	return &MeanRate{}
}

// Add records one accepted share of the given difficulty.
func (h *MeanRate) Add(diff float64) {
	h.totalWork.Add(uint64(diff))

	now := time.Now()
	h.firstSubmitTime.CompareAndSwap(0, now.Unix())
	h.lastSubmitTime.Store(now.Unix())
}

// Value returns the raw accumulated difficulty sum.
func (h *MeanRate) Value() float64 {
	return float64(h.totalWork.Load())
}

// ValuePer returns the accumulated difficulty per unit t, e.g. ValuePer(time.Second).
func (h *MeanRate) ValuePer(t time.Duration) float64 {
	total := h.totalDuration()
	if total == 0 {
		return 0
	}
	return h.Value() / (float64(total) / float64(t))
}

// GetLastSubmitTime reports when the most recent share was added, the zero
// time if none has been.
func (h *MeanRate) GetLastSubmitTime() time.Time {
	last := h.lastSubmitTime.Load()
	if last == 0 {
		return time.Time{}
	}
	return time.Unix(last, 0)
}

func (h *MeanRate) totalDuration() time.Duration {
	first := h.firstSubmitTime.Load()
	if first == 0 {
		return 0
	}
	return time.Duration(time.Now().Unix()-first) * time.Second
}
