package engine

import "time"

// Counter accumulates a rate-bearing quantity over time. MeanRate is the
// only implementation; it exists as an interface so adapters can swap in a
// fake for tests.
type Counter interface {
	Add(v float64)
	Value() float64
	ValuePer(t time.Duration) float64
}
