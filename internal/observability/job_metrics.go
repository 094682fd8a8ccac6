package observability

import (
	"sync/atomic"
	"time"
)

// JobMetrics counts worker outcomes without needing a metrics backend; the
// worker serves a snapshot of these on its health port.
type JobMetrics struct {
	claimed      atomic.Uint64
	done         atomic.Uint64
	failed       atomic.Uint64
	retried      atomic.Uint64
	deadLettered atomic.Uint64

	// duration stats in nanoseconds
	durationCount atomic.Uint64
	durationTotal atomic.Int64
	durationMax   atomic.Int64
}

func NewJobMetrics() *JobMetrics {
	return &JobMetrics{}
}

func (m *JobMetrics) IncClaimed() { m.claimed.Add(1) }

func (m *JobMetrics) IncDone() { m.done.Add(1) }

func (m *JobMetrics) IncFailed() { m.failed.Add(1) }

func (m *JobMetrics) IncRetried() { m.retried.Add(1) }

func (m *JobMetrics) IncDeadLettered() { m.deadLettered.Add(1) }

func (m *JobMetrics) ObserveDuration(d time.Duration) {
	ns := d.Nanoseconds()

	m.durationCount.Add(1)
	m.durationTotal.Add(ns)

	for {
		curr := m.durationMax.Load()

		if ns <= curr {
			return
		}

		if m.durationMax.CompareAndSwap(curr, ns) {
			return
		}
	}
}

type JobMetricsSnapshot struct {
	Claimed         uint64        `json:"claimed"`
	Done            uint64        `json:"done"`
	Failed          uint64        `json:"failed"`
	Retried         uint64        `json:"retried"`
	DeadLettered    uint64        `json:"deadLettered"`
	DurationCount   uint64        `json:"durationCount"`
	AverageDuration time.Duration `json:"averageDurationNs"`
	MaxDuration     time.Duration `json:"maxDurationNs"`
}

func (m *JobMetrics) Snapshot() JobMetricsSnapshot {
	count := m.durationCount.Load()
	total := m.durationTotal.Load()

	var avg time.Duration

	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return JobMetricsSnapshot{
		Claimed:         m.claimed.Load(),
		Done:            m.done.Load(),
		Failed:          m.failed.Load(),
		Retried:         m.retried.Load(),
		DeadLettered:    m.deadLettered.Load(),
		DurationCount:   count,
		AverageDuration: avg,
		MaxDuration:     time.Duration(m.durationMax.Load()),
	}
}
