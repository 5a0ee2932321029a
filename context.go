package nex

import (
	"time"

	"github.com/rs/zerolog"
)

// Clock is injected into anything that needs "now", so the ticket subsystem
// and connection idle-reaper are testable with a deterministic time source.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used in production; it simply calls time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that always returns the same instant. Used in tests.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (f FixedClock) Now() time.Time {
	return f.At
}

// CoreContext carries the dependencies that would otherwise be global
// mutable singletons (config, logger, clock) into the components that need
// them.
type CoreContext struct {
	Logger zerolog.Logger
	Clock  Clock
	Config *Config
}

// NewCoreContext builds a CoreContext around cfg and logger, using the
// system clock.
func NewCoreContext(cfg *Config, logger zerolog.Logger) *CoreContext {
	return &CoreContext{
		Logger: logger,
		Clock:  SystemClock{},
		Config: cfg,
	}
}
