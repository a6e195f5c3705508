package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Detector configuration
	Detector DetectorConfig

	// Keep-alive configuration
	KeepAlive KeepAliveConfig

	// Log configuration
	Log LogConfig
}

// DetectorConfig holds the two sampling cadences
type DetectorConfig struct {
	CheckingInterval time.Duration // Coarse cadence used to notice the pointer stopped
	CounterInterval  time.Duration // Fine cadence used while an idle episode is open
}

// KeepAliveConfig holds pointer jitter configuration
type KeepAliveConfig struct {
	Enabled      bool          // Whether to nudge the pointer while idle
	Interval     time.Duration // How often the jitter task runs
	MinPixels    int           // Smallest jitter displacement
	MaxPixels    int           // Largest jitter displacement, inclusive
	RestoreDelay time.Duration // Delay before the pointer is put back
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string // debug, info, warn or error
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			CheckingInterval: 2 * time.Minute,
			CounterInterval:  time.Second,
		},
		KeepAlive: KeepAliveConfig{
			Enabled:      false,
			Interval:     500 * time.Millisecond, // Half the counter interval
			MinPixels:    10,
			MaxPixels:    99,
			RestoreDelay: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Detector.CheckingInterval <= 0 {
		return fmt.Errorf("checking interval must be positive, got %v", c.Detector.CheckingInterval)
	}

	if c.Detector.CounterInterval <= 0 {
		return fmt.Errorf("counter interval must be positive, got %v", c.Detector.CounterInterval)
	}

	if c.Detector.CounterInterval >= c.Detector.CheckingInterval {
		return fmt.Errorf("counter interval (%v) must be shorter than checking interval (%v)",
			c.Detector.CounterInterval, c.Detector.CheckingInterval)
	}

	if c.KeepAlive.Interval <= 0 {
		return fmt.Errorf("keep-alive interval must be positive, got %v", c.KeepAlive.Interval)
	}

	if c.KeepAlive.Interval >= c.Detector.CounterInterval {
		return fmt.Errorf("keep-alive interval (%v) must be shorter than counter interval (%v)",
			c.KeepAlive.Interval, c.Detector.CounterInterval)
	}

	if c.KeepAlive.MinPixels <= 0 {
		return fmt.Errorf("keep-alive min pixels must be positive, got %d", c.KeepAlive.MinPixels)
	}

	if c.KeepAlive.MaxPixels < c.KeepAlive.MinPixels {
		return fmt.Errorf("keep-alive max pixels (%d) cannot be less than min pixels (%d)",
			c.KeepAlive.MaxPixels, c.KeepAlive.MinPixels)
	}

	if c.KeepAlive.RestoreDelay <= 0 {
		return fmt.Errorf("keep-alive restore delay must be positive, got %v", c.KeepAlive.RestoreDelay)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}

// SetCheckingInterval sets the checking interval with validation
func (c *Config) SetCheckingInterval(interval time.Duration) error {
	if interval <= c.Detector.CounterInterval {
		return fmt.Errorf("checking interval must be greater than %v", c.Detector.CounterInterval)
	}
	c.Detector.CheckingInterval = interval
	return nil
}

// SetCounterInterval sets the counter interval with validation. The
// keep-alive interval follows at half the counter cadence.
func (c *Config) SetCounterInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("counter interval must be positive, got %v", interval)
	}
	if interval >= c.Detector.CheckingInterval {
		return fmt.Errorf("counter interval must be less than %v", c.Detector.CheckingInterval)
	}
	c.Detector.CounterInterval = interval
	c.KeepAlive.Interval = interval / 2
	return nil
}

// GetCheckingIntervalMinutes returns the checking interval in whole minutes
func (c *Config) GetCheckingIntervalMinutes() int64 {
	return int64(c.Detector.CheckingInterval.Minutes())
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Detector:
    Checking Interval: %v
    Counter Interval: %v
  Keep Alive:
    Enabled: %v
    Interval: %v
    Pixels: %d-%d
    Restore Delay: %v
  Log:
    Level: %s`,
		c.Detector.CheckingInterval,
		c.Detector.CounterInterval,
		c.KeepAlive.Enabled,
		c.KeepAlive.Interval,
		c.KeepAlive.MinPixels,
		c.KeepAlive.MaxPixels,
		c.KeepAlive.RestoreDelay,
		c.Log.Level,
	)
}
