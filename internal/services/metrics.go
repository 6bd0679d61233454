package services

import (
	"sync/atomic"
	"time"
)

// Metrics tracks service counters across requests. All fields are atomics;
// one instance is constructed at startup and shared by the handlers.
type Metrics struct {
	totalFrames  atomic.Int64
	totalErrors  atomic.Int64
	totalLatency atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrementFrames() {
	m.totalFrames.Add(1)
}

func (m *Metrics) IncrementErrors() {
	m.totalErrors.Add(1)
}

func (m *Metrics) RecordLatency(duration time.Duration) {
	m.totalLatency.Add(duration.Milliseconds())
}

func (m *Metrics) IncrementWSConnections() {
	m.wsConnections.Add(1)
}

func (m *Metrics) DecrementWSConnections() {
	m.wsConnections.Add(-1)
}

func (m *Metrics) IncrementWSMessages() {
	m.wsMessages.Add(1)
}

func (m *Metrics) TotalFrames() int64 {
	return m.totalFrames.Load()
}

func (m *Metrics) TotalErrors() int64 {
	return m.totalErrors.Load()
}

// AvgLatencyMs is the mean analyzer round-trip over all processed frames.
func (m *Metrics) AvgLatencyMs() float64 {
	frames := m.totalFrames.Load()
	if frames == 0 {
		return 0
	}
	return float64(m.totalLatency.Load()) / float64(frames)
}

func (m *Metrics) WSConnections() int64 {
	return m.wsConnections.Load()
}

func (m *Metrics) WSMessages() int64 {
	return m.wsMessages.Load()
}

func (m *Metrics) UptimeSeconds() int64 {
	return int64(time.Since(m.startTime).Seconds())
}
