package pointer

import "sync"

// Serialized wraps an Actuator so that at most one move reaches the
// display server at a time.
type Serialized struct {
	mu       sync.Mutex
	actuator Actuator
}

// NewSerialized returns a, guarded by a mutex. Wrapping an already
// serialized actuator returns it unchanged.
func NewSerialized(a Actuator) *Serialized {
	if s, ok := a.(*Serialized); ok {
		return s
	}
	return &Serialized{actuator: a}
}

func (s *Serialized) MoveBy(dx, dy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actuator.MoveBy(dx, dy)
}

func (s *Serialized) MoveTo(p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actuator.MoveTo(p)
}
