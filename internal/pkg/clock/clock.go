package clock

import (
	"sync"
	"time"
)

// Clock is the time source for billing decisions. Everything that compares
// against "now" takes a Clock so tests can pin the billing tick.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in UTC.
type RealClock struct{}

// NewRealClock creates a new RealClock.
func NewRealClock() Clock {
	return &RealClock{}
}

// Now returns the current system time in UTC.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a settable clock for tests. It is safe for concurrent use
// because scheduler tests read it from several goroutines.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{current: startTime}
}

// Now returns the mock current time.
func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set sets the mock current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}

// Advance moves the mock clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
}

// AdvanceDays moves the mock clock forward by whole calendar days.
func (m *MockClock) AdvanceDays(days int) {
	m.mu.Lock()
	m.current = m.current.AddDate(0, 0, days)
	m.mu.Unlock()
}
