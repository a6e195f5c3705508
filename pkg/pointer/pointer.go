package pointer

import (
	"fmt"
	"time"
)

// Point is a pointer coordinate in root-window pixels
type Point struct {
	X int
	Y int
}

// Offset returns the point moved by dx, dy
func (p Point) Offset(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("{x=%d, y=%d}", p.X, p.Y)
}

// Sample is a pointer position captured at a moment in time
type Sample struct {
	Point
	ObservedAt time.Time
}

// SameAs reports whether both samples hold the same coordinate.
// The observation time is ignored.
func (s Sample) SameAs(other Sample) bool {
	return s.Point == other.Point
}

// Source reads the current pointer position
type Source interface {
	// Position blocks until the display server answers with the pointer coordinate
	Position() (Point, error)
}

// Actuator moves the physical pointer
type Actuator interface {
	// MoveBy displaces the pointer relative to where it currently is
	MoveBy(dx, dy int) error

	// MoveTo places the pointer at an absolute coordinate
	MoveTo(p Point) error
}

// Backend is the interface that all pointer integrations must satisfy
type Backend interface {
	Source
	Actuator

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the backend
	Close() error
}
