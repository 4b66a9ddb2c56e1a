package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const latencySamples = 1000

// Metrics tracks key transition processing.
//
// Counters are updated by the engine and may be read from any goroutine.
type Metrics struct {
	transitionsTotal    atomic.Uint64
	handlersFired       atomic.Uint64
	simulatedEvents     atomic.Uint64
	reconciledModifiers atomic.Uint64
	ignoredEvents       atomic.Uint64
	hookConsumptions    atomic.Uint64

	mu                sync.RWMutex
	transitionLatency []time.Duration
	handlerLatency    []time.Duration
	transitionIdx     int
	handlerIdx        int
	peakTransitionNs  atomic.Int64
	peakHandlerNs     atomic.Int64
	startTime         time.Time

	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		transitionLatency: make([]time.Duration, latencySamples),
		handlerLatency:    make([]time.Duration, latencySamples),
		startTime:         time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

// RecordTransition records a processed transition with its processing time.
func (m *Metrics) RecordTransition(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.transitionsTotal.Add(1)
	storePeak(&m.peakTransitionNs, latency)

	m.mu.Lock()
	m.transitionLatency[m.transitionIdx] = latency
	m.transitionIdx = (m.transitionIdx + 1) % latencySamples
	m.mu.Unlock()
}

// RecordHandler records a handler run with its duration.
func (m *Metrics) RecordHandler(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.handlersFired.Add(1)
	storePeak(&m.peakHandlerNs, latency)

	m.mu.Lock()
	m.handlerLatency[m.handlerIdx] = latency
	m.handlerIdx = (m.handlerIdx + 1) % latencySamples
	m.mu.Unlock()
}

// RecordSimulated records a synthesized keypress or keyup.
func (m *Metrics) RecordSimulated() {
	if m.enabled.Load() {
		m.simulatedEvents.Add(1)
	}
}

// RecordReconciledModifier records a modifier release inferred from event flags.
func (m *Metrics) RecordReconciledModifier() {
	if m.enabled.Load() {
		m.reconciledModifiers.Add(1)
	}
}

// RecordIgnored records a transition skipped by the ignore condition or
// repeat filtering.
func (m *Metrics) RecordIgnored() {
	if m.enabled.Load() {
		m.ignoredEvents.Add(1)
	}
}

// RecordHookConsumption records when a hook consumes a transition or match.
func (m *Metrics) RecordHookConsumption() {
	if m.enabled.Load() {
		m.hookConsumptions.Add(1)
	}
}

func storePeak(peak *atomic.Int64, latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := peak.Load()
		if ns <= current || peak.CompareAndSwap(current, ns) {
			return
		}
	}
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	TransitionsTotal    uint64
	HandlersFired       uint64
	SimulatedEvents     uint64
	ReconciledModifiers uint64
	IgnoredEvents       uint64
	HookConsumptions    uint64

	AvgTransitionLatency  time.Duration
	MaxTransitionLatency  time.Duration
	P99TransitionLatency  time.Duration
	PeakTransitionLatency time.Duration

	AvgHandlerLatency  time.Duration
	MaxHandlerLatency  time.Duration
	P99HandlerLatency  time.Duration
	PeakHandlerLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	transitions := slices.Clone(m.transitionLatency)
	handlers := slices.Clone(m.handlerLatency)
	uptime := time.Since(m.startTime)
	m.mu.RUnlock()

	snap := MetricsSnapshot{
		TransitionsTotal:      m.transitionsTotal.Load(),
		HandlersFired:         m.handlersFired.Load(),
		SimulatedEvents:       m.simulatedEvents.Load(),
		ReconciledModifiers:   m.reconciledModifiers.Load(),
		IgnoredEvents:         m.ignoredEvents.Load(),
		HookConsumptions:      m.hookConsumptions.Load(),
		PeakTransitionLatency: time.Duration(m.peakTransitionNs.Load()),
		PeakHandlerLatency:    time.Duration(m.peakHandlerNs.Load()),
		Uptime:                uptime,
	}
	snap.AvgTransitionLatency, snap.MaxTransitionLatency, snap.P99TransitionLatency = calculateLatencyStats(transitions)
	snap.AvgHandlerLatency, snap.MaxHandlerLatency, snap.P99HandlerLatency = calculateLatencyStats(handlers)
	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]
	idx := min(int(float64(len(valid))*0.99), len(valid)-1)
	return avg, maxLat, valid[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.transitionsTotal.Store(0)
	m.handlersFired.Store(0)
	m.simulatedEvents.Store(0)
	m.reconciledModifiers.Store(0)
	m.ignoredEvents.Store(0)
	m.hookConsumptions.Store(0)
	m.peakTransitionNs.Store(0)
	m.peakHandlerNs.Store(0)

	m.mu.Lock()
	m.transitionLatency = make([]time.Duration, latencySamples)
	m.handlerLatency = make([]time.Duration, latencySamples)
	m.transitionIdx = 0
	m.handlerIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Timer helps measure operation duration.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// StartTransitionTimer starts a timer for measuring transition processing.
func (m *Metrics) StartTransitionTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// Stop stops the timer and records the transition latency.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordTransition(elapsed)
	return elapsed
}

// StartHandlerTimer starts a timer for measuring a handler run.
func (m *Metrics) StartHandlerTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// StopHandler stops the timer and records the handler latency.
func (t *Timer) StopHandler() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordHandler(elapsed)
	return elapsed
}
