package metrics

import (
	"math"
	"sync/atomic"
)

// SamplingObserver forwards every n-th event, n derived from rate. Used to
// thin the per-turn event log on busy lines.
type SamplingObserver struct {
	inner       Observer
	rate        float64
	sampleEvery uint64
	counter     uint64
}

func NewSamplingObserver(inner Observer, rate float64) *SamplingObserver {
	if rate > 1 {
		rate = 1
	}
	if rate < 0 {
		rate = 0
	}
	var every uint64
	switch {
	case rate == 0:
	case rate == 1:
		every = 1
	default:
		every = max(uint64(math.Round(1.0/rate)), 1)
	}
	return &SamplingObserver{inner: OrNoop(inner), rate: rate, sampleEvery: every}
}

func (s *SamplingObserver) RecordEvent(ev MetricsEvent) {
	if s.rate == 0 {
		return
	}
	if s.sampleEvery <= 1 {
		s.inner.RecordEvent(ev)
		return
	}
	n := atomic.AddUint64(&s.counter, 1)
	if n%s.sampleEvery == 0 {
		s.inner.RecordEvent(ev)
	}
}
