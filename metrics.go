package qsim

import "sync"

// MetricsSnapshot is a point-in-time copy of the simulator's counters.
type MetricsSnapshot struct {
	MomentsExecuted     int64
	GateApplications    int64
	CrossShardExchanges int64
	Measurements        int64
	TrialsCompleted     int64
}

/*
Metrics counts what the simulator has done. Counters are cumulative over
the simulator's lifetime and safe to read concurrently with runs.
*/
type Metrics struct {
	mu sync.RWMutex
	MetricsSnapshot
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordMoment(gates, exchanges int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MomentsExecuted++
	m.GateApplications += int64(gates)
	m.CrossShardExchanges += int64(exchanges)
}

func (m *Metrics) recordMeasurement() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Measurements++
}

func (m *Metrics) recordTrial() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrialsCompleted++
}

// Snapshot returns a copy safe to inspect without holding the lock.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.MetricsSnapshot
}
