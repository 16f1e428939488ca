package core

import (
	"sync"
	"time"
)

// TimeProvider is the single source of wall-clock time for the frame loop.
type TimeProvider interface {
	Now() time.Time
}

// SystemTimeProvider reads the monotonic system clock.
type SystemTimeProvider struct{}

func NewSystemTimeProvider() *SystemTimeProvider {
	return &SystemTimeProvider{}
}

func (p *SystemTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a manually driven clock for deterministic frames.
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{
		currentTime: startTime,
	}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

type Clock struct {
	provider  TimeProvider
	startTime time.Time
	running   bool
	elapsed   time.Duration
}

func NewClock(provider TimeProvider) *Clock {
	if provider == nil {
		provider = NewSystemTimeProvider()
	}
	return &Clock{provider: provider}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.running {
		c.elapsed = c.provider.Now().Sub(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.provider.Now()
	c.running = true
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.running = false
}

func (c *Clock) Running() bool {
	return c.running
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// ElapsedMS returns the elapsed time in fractional milliseconds.
func (c *Clock) ElapsedMS() float64 {
	return float64(c.elapsed) / float64(time.Millisecond)
}
