// Package logging provides the line-oriented logger handed to every
// component. A Logger moves through three states:
//
//	Active -> Draining -> Closed
//
// Drain marks the start of shutdown while tasks that are still finishing
// keep writing. Close waits for in-flight writes, flushes the output and
// turns every later call into a no-op, so nothing logged before Close is
// lost and nothing logged after it fails.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is the lifecycle phase of a Logger
type State int

const (
	Active State = iota
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	componentKey    = "component"
	timestampFormat = "2006-01-02 15:04:05"
)

type core struct {
	mu     sync.RWMutex
	state  State
	out    io.Writer
	logger *logrus.Logger
}

// Logger is a handle on a shared log output. Loggers derived with Named
// share the lifecycle of their parent.
type Logger struct {
	core  *core
	entry *logrus.Entry
}

// New creates a logger writing to w at the given level
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(lvl)
	base.SetFormatter(&lineFormatter{})

	c := &core{out: w, logger: base}
	return &Logger{core: c, entry: logrus.NewEntry(base)}, nil
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	l, _ := New(io.Discard, "error")
	return l
}

// Named returns a child logger tagging each line with component
func (l *Logger) Named(component string) *Logger {
	return &Logger{core: l.core, entry: l.entry.WithField(componentKey, component)}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(logrus.DebugLevel, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(logrus.InfoLevel, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(logrus.WarnLevel, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(logrus.ErrorLevel, format, args...)
}

func (l *Logger) logf(level logrus.Level, format string, args ...interface{}) {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()

	if l.core.state == Closed {
		return
	}
	l.entry.Logf(level, format, args...)
}

// State returns the current lifecycle phase
func (l *Logger) State() State {
	l.core.mu.RLock()
	defer l.core.mu.RUnlock()
	return l.core.state
}

// Drain moves an active logger into the draining phase
func (l *Logger) Drain() {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	if l.core.state == Active {
		l.core.state = Draining
	}
}

// Close flushes the output and closes the logger. Calling Close more than
// once is allowed.
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	if l.core.state == Closed {
		return nil
	}
	l.core.state = Closed

	if s, ok := l.core.out.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil && !isUnsyncable(err) {
			return errors.Wrap(err, "failed to flush log output")
		}
	}
	return nil
}

// isUnsyncable matches the error terminals and pipes return from fsync
func isUnsyncable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

// lineFormatter renders "2006-01-02 15:04:05 LEVEL [component] message"
type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(e.Time.Format(timestampFormat))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level.String()))
	if component, ok := e.Data[componentKey]; ok {
		fmt.Fprintf(&b, " [%v]", component)
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	b.WriteByte('\n')

	return b.Bytes(), nil
}
