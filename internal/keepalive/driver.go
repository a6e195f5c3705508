package keepalive

import (
	"math/rand/v2"
	"sync"

	"github.com/mouseidle/mouseidle/internal/config"
	"github.com/mouseidle/mouseidle/internal/logging"
	"github.com/mouseidle/mouseidle/internal/scheduler"
	"github.com/mouseidle/mouseidle/pkg/pointer"
)

// Direction of a jitter move
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// TakeFunc returns the point the pointer is being held at and clears it.
// ok is false when no jitter should happen.
type TakeFunc func() (p pointer.Point, ok bool)

// Rand is the source of jitter randomness. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Driver nudges the pointer while an idle episode is being suppressed and
// puts it back after a short delay
type Driver struct {
	cfg       config.KeepAliveConfig
	take      TakeFunc
	actuator  pointer.Actuator
	scheduler *scheduler.Scheduler
	log       *logging.Logger
	rand      Rand

	mu      sync.Mutex
	handle  *scheduler.Handle
	pending sync.WaitGroup
}

// NewDriver creates a driver. Moves go through a serialized actuator; a
// nil rnd uses the process-wide generator.
func NewDriver(cfg config.KeepAliveConfig, take TakeFunc, actuator pointer.Actuator, sched *scheduler.Scheduler, log *logging.Logger, rnd Rand) *Driver {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Driver{
		cfg:       cfg,
		take:      take,
		actuator:  pointer.NewSerialized(actuator),
		scheduler: sched,
		log:       log.Named("keepalive"),
		rand:      rnd,
	}
}

// Start schedules the jitter task. Starting twice has no effect.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handle == nil {
		d.handle = d.scheduler.Periodic("keep-alive", d.cfg.Interval, d.Tick)
	}
}

// Stop cancels the jitter task and waits for scheduled restores, so the
// pointer is never left displaced.
func (d *Driver) Stop() {
	d.mu.Lock()
	h := d.handle
	d.mu.Unlock()

	if h != nil {
		h.Cancel()
		h.Wait()
	}
	d.pending.Wait()
}

// Tick runs one jitter cycle: when a suppressed point is set, move the
// pointer by a random offset and schedule the restore.
func (d *Driver) Tick() error {
	origin, ok := d.take()
	if !ok {
		return nil
	}

	dir, dx, dy := d.offset()
	if err := d.actuator.MoveBy(dx, dy); err != nil {
		d.log.Warnf("Failed to move pointer %s from %s: %v", dir, origin, err)
		return nil
	}
	d.log.Debugf("Moved pointer %s by %d,%d from %s", dir, dx, dy, origin)

	d.pending.Add(1)
	d.scheduler.Once("restore", d.cfg.RestoreDelay, func() error {
		defer d.pending.Done()
		if err := d.actuator.MoveTo(origin); err != nil {
			d.log.Warnf("Failed to restore pointer to %s: %v", origin, err)
		}
		return nil
	})
	return nil
}

func (d *Driver) offset() (Direction, int, int) {
	dir := Direction(d.rand.IntN(4))
	pixels := d.cfg.MinPixels + d.rand.IntN(d.cfg.MaxPixels-d.cfg.MinPixels+1)

	switch dir {
	case Up:
		return dir, 0, -pixels
	case Down:
		return dir, 0, pixels
	case Left:
		return dir, -pixels, 0
	default:
		return dir, pixels, 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}
