// Package clock is the monotonic time source every blocking routine in the
// globe is gated on. Animations and indicators never sleep on their own; they
// ask the Clock, which lets tests run multi-second sequences instantly.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Since is elapsed time on c.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Monotonic is the wall clock. time.Now carries a monotonic reading, so
// differences between two Now values are immune to wall clock steps.
type Monotonic struct{}

func New() Monotonic {
	return Monotonic{}
}

func (Monotonic) Now() time.Time {
	return time.Now()
}

func (Monotonic) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Mock only moves when told to. Sleep advances it, so a busy loop that
// sleeps between polls terminates.
type Mock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *Mock) Sleep(d time.Duration) {
	m.Advance(d)
}

func (m *Mock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
