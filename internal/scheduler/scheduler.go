package scheduler

import (
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/mouseidle/mouseidle/internal/logging"
)

// Kind selects how a Task is scheduled
type Kind int

const (
	// OneShot runs the task once, Interval after it is started
	OneShot Kind = iota
	// Periodic runs the task immediately and then at a fixed rate
	Periodic
)

func (k Kind) String() string {
	if k == Periodic {
		return "periodic"
	}
	return "one-shot"
}

// Task describes a unit of work and its schedule
type Task struct {
	Name     string
	Kind     Kind
	Interval time.Duration // Period for Periodic, delay for OneShot
	Run      func() error
}

// Scheduler starts tasks, each on its own goroutine
type Scheduler struct {
	clock clock.Clock
	log   *logging.Logger
}

// New creates a scheduler driven by clk
func New(clk clock.Clock, log *logging.Logger) *Scheduler {
	return &Scheduler{
		clock: clk,
		log:   log.Named("scheduler"),
	}
}

// Handle controls a started task
type Handle struct {
	mu        sync.Mutex
	cancelled bool
	stop      chan struct{}
	done      chan struct{}
}

// Cancel prevents any new run from starting once it returns. A run that
// is already executing is left to finish.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.cancelled {
		h.cancelled = true
		close(h.stop)
	}
}

// Done is closed when the task goroutine has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task goroutine has exited
func (h *Handle) Wait() {
	<-h.done
}

// begin reports whether a run may start
func (h *Handle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.cancelled
}

// Start schedules task according to its Kind.
//
// Periodic tasks are fixed-rate: run N is due at start+N*Interval. A run
// that overruns makes the following runs start back to back until the
// schedule has caught up, so no run is dropped and runs of one task never
// overlap.
func (s *Scheduler) Start(task Task) *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop(task, h)
	return h
}

// Periodic is shorthand for Start with Kind Periodic
func (s *Scheduler) Periodic(name string, period time.Duration, run func() error) *Handle {
	return s.Start(Task{Name: name, Kind: Periodic, Interval: period, Run: run})
}

// Once is shorthand for Start with Kind OneShot. The goroutine exits after
// the single run.
func (s *Scheduler) Once(name string, delay time.Duration, run func() error) {
	s.Start(Task{Name: name, Kind: OneShot, Interval: delay, Run: run})
}

func (s *Scheduler) loop(task Task, h *Handle) {
	defer close(h.done)

	start := s.clock.Now()

	if task.Kind == OneShot {
		if s.waitUntil(h, start.Add(task.Interval)) && h.begin() {
			s.invoke(task)
		}
		return
	}

	for n := int64(0); ; n++ {
		due := start.Add(time.Duration(n) * task.Interval)
		if !s.waitUntil(h, due) || !h.begin() {
			return
		}
		s.invoke(task)
	}
}

// waitUntil blocks until due or until the handle is cancelled
func (s *Scheduler) waitUntil(h *Handle, due time.Time) bool {
	d := due.Sub(s.clock.Now())
	if d <= 0 {
		select {
		case <-h.stop:
			return false
		default:
			return true
		}
	}

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.stop:
		return false
	case <-timer.C():
		return true
	}
}

// invoke runs the task body, logging errors and panics instead of letting
// them end the schedule
func (s *Scheduler) invoke(task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("%s task %q panicked: %v", task.Kind, task.Name, r)
		}
	}()

	if err := task.Run(); err != nil {
		s.log.Errorf("%s task %q failed: %v", task.Kind, task.Name, err)
	}
}
