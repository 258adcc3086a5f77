package motion

import "sync"

// Sim is a sensor at rest, face up, that can be jolted from another
// goroutine.
type Sim struct {
	mu     sync.Mutex
	jolts  int
	Jolted [3]float64
	Err    error
}

func NewSim() *Sim {
	return &Sim{Jolted: [3]float64{30, 30, StandardGravity}}
}

// Jolt makes the next n samples read as a hard shake.
func (s *Sim) Jolt(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jolts += n
}

func (s *Sim) Acceleration() (x, y, z float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, 0, 0, s.Err
	}
	if s.jolts > 0 {
		s.jolts--
		return s.Jolted[0], s.Jolted[1], s.Jolted[2], nil
	}
	return 0, 0, StandardGravity, nil
}
