package idle

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"k8s.io/utils/clock"

	"github.com/mouseidle/mouseidle/internal/config"
	"github.com/mouseidle/mouseidle/internal/keepalive"
	"github.com/mouseidle/mouseidle/internal/logging"
	"github.com/mouseidle/mouseidle/internal/scheduler"
	"github.com/mouseidle/mouseidle/pkg/pointer"
	"github.com/mouseidle/mouseidle/pkg/utils"
)

// Options carries the collaborators of a Detector. Zero values fall back
// to the real clock, a discarding logger and exit-on-fatal.
type Options struct {
	Clock    clock.Clock
	Logger   *logging.Logger
	Actuator pointer.Actuator // required when keep-alive is enabled
	Rand     keepalive.Rand
	OnFatal  func(error)
}

// Stats is a snapshot of the detector state
type Stats struct {
	TotalIdle   time.Duration
	Episodes    int
	EpisodeOpen bool
	FastPolling bool
}

// Detector finds idle episodes by sampling the pointer at two cadences.
//
// The checker task samples every CheckingInterval. Once two consecutive
// samples match it opens an episode and arms fast polling; from then on
// the checker is quiet and the counter task samples every CounterInterval
// until the pointer moves, which closes the episode and hands control back
// to the checker.
type Detector struct {
	cfg       config.Config
	source    pointer.Source
	clock     clock.Clock
	log       *logging.Logger
	scheduler *scheduler.Scheduler
	keepAlive *keepalive.Driver
	onFatal   func(error)

	// mu guards everything below, including the suppressed point read by
	// the keep-alive driver
	mu         sync.Mutex
	lastSample *pointer.Sample
	fastPoll   bool
	acc        *Accumulator
	suppressed *pointer.Point
	checker    *scheduler.Handle
	counter    *scheduler.Handle
	started    bool
	stopped    bool
}

// New creates a detector reading from source
func New(cfg *config.Config, source pointer.Source, opts Options) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector configuration")
	}
	if cfg.KeepAlive.Enabled && opts.Actuator == nil {
		return nil, errors.New("keep-alive is enabled but no pointer actuator was given")
	}

	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.OnFatal == nil {
		opts.OnFatal = exitOnFatal
	}

	d := &Detector{
		cfg:       *cfg,
		source:    source,
		clock:     opts.Clock,
		log:       opts.Logger.Named("detector"),
		scheduler: scheduler.New(opts.Clock, opts.Logger),
		onFatal:   opts.OnFatal,
		acc:       NewAccumulator(cfg.Detector.CheckingInterval),
	}

	if cfg.KeepAlive.Enabled {
		d.keepAlive = keepalive.NewDriver(cfg.KeepAlive, d.takeSuppressed, opts.Actuator, d.scheduler, opts.Logger, opts.Rand)
	}

	return d, nil
}

// Start schedules the checker and counter tasks and, when enabled, the
// keep-alive driver
func (d *Detector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("detector is already running")
	}
	d.started = true

	d.log.Infof("Started (checking for %d min of idle time)", int64(d.cfg.Detector.CheckingInterval.Minutes()))
	if d.keepAlive != nil {
		d.log.Infof("Keep OS alive during mouse idle checking")
	}

	d.checker = d.scheduler.Periodic("checker", d.cfg.Detector.CheckingInterval, d.runChecker)
	d.counter = d.scheduler.Periodic("counter", d.cfg.Detector.CounterInterval, d.runCounter)
	if d.keepAlive != nil {
		d.keepAlive.Start()
	}
	return nil
}

// Stop cancels both tasks, closes any open episode at the current time and
// stops the keep-alive driver. A tick already running is allowed to
// finish; ticks that acquire the lock after Stop do nothing.
func (d *Detector) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	checker, counter := d.checker, d.counter
	d.mu.Unlock()

	if checker != nil {
		checker.Cancel()
	}
	if counter != nil {
		counter.Cancel()
	}

	d.mu.Lock()
	d.fastPoll = false
	d.suppressed = nil
	d.closeEpisode(d.clock.Now())
	d.log.Infof("Done")
	d.mu.Unlock()

	if d.keepAlive != nil {
		d.keepAlive.Stop()
	}
}

// Stats returns a snapshot of the accumulated idle state
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Stats{
		TotalIdle:   d.acc.Total(),
		Episodes:    d.acc.Closed(),
		EpisodeOpen: d.acc.IsOpen(),
		FastPolling: d.fastPoll,
	}
}

// runChecker is the checker task body. Any failure is fatal.
func (d *Detector) runChecker() error {
	if err := d.checkerTick(); err != nil {
		d.fatal(err)
	}
	return nil
}

// runCounter is the counter task body. Sampling failures are fatal so a
// stuck pointer source is never mistaken for an idle user.
func (d *Detector) runCounter() error {
	if err := d.counterTick(); err != nil {
		d.fatal(err)
	}
	return nil
}

func (d *Detector) checkerTick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("checker transition panicked: %v", r)
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fastPoll || d.stopped {
		return nil
	}

	sample, err := d.sample()
	if err != nil {
		return errors.Wrap(err, "checker failed to sample pointer")
	}
	d.evaluate(sample)
	return nil
}

func (d *Detector) counterTick() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.fastPoll || d.stopped {
		return nil
	}

	sample, err := d.sample()
	if err != nil {
		return errors.Wrap(err, "counter failed to sample pointer")
	}
	d.evaluate(sample)
	return nil
}

func (d *Detector) sample() (pointer.Sample, error) {
	p, err := d.source.Position()
	if err != nil {
		return pointer.Sample{}, err
	}
	return pointer.Sample{Point: p, ObservedAt: d.clock.Now()}, nil
}

// evaluate applies one sample to the state machine. Callers hold mu.
func (d *Detector) evaluate(s pointer.Sample) {
	last := d.lastSample
	if last == nil {
		d.log.Debugf("<none> - %s", s.Point)
	} else {
		d.log.Debugf("%s - %s", last.Point, s.Point)
	}

	if last != nil && s.SameAs(*last) {
		d.stationary(s)
	} else {
		d.moved(s)
	}
	d.lastSample = &s
}

func (d *Detector) stationary(s pointer.Sample) {
	if !d.fastPoll {
		if d.acc.Open(s.ObservedAt) {
			d.log.Infof("Starting counting idle time...")
		}
		d.fastPoll = true
		return
	}

	if d.keepAlive != nil {
		p := s.Point
		d.suppressed = &p
	}
}

func (d *Detector) moved(s pointer.Sample) {
	d.fastPoll = false
	d.suppressed = nil
	d.closeEpisode(s.ObservedAt)
}

func (d *Detector) closeEpisode(at time.Time) {
	ep, ok := d.acc.Close(at)
	if !ok {
		return
	}
	d.log.Infof("End: %s", utils.FormatClock(ep.Duration))
	d.log.Infof("Total mouse idle time: %s", utils.FormatClock(d.acc.Total()))
}

// takeSuppressed hands the held point to the keep-alive driver and clears it
func (d *Detector) takeSuppressed() (pointer.Point, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.suppressed == nil {
		return pointer.Point{}, false
	}
	p := *d.suppressed
	d.suppressed = nil
	return p, true
}

func (d *Detector) fatal(err error) {
	d.log.Errorf("Idle detection failed, idle state can no longer be trusted: %v", err)
	d.onFatal(err)
}

func exitOnFatal(err error) {
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}
