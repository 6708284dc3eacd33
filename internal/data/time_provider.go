package data

import "time"

// TimeProvider supplies timestamps for inserts and updates so tests can pin
// them to a known instant.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock.
type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider returns a preset instant. Test-only.
type FixedTimeProvider struct {
	fixed time.Time
}

// NewFixedTimeProvider pins the provider to t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixed: t}
}

func (f *FixedTimeProvider) Now() time.Time {
	return f.fixed
}

// Advance moves the fixed instant forward, simulating elapsed time between
// operations in a test.
func (f *FixedTimeProvider) Advance(d time.Duration) {
	f.fixed = f.fixed.Add(d)
}
