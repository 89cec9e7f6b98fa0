package genetic

import "sync/atomic"

// debugEnabled controls whether per-generation traces are emitted.
// Default is false for production performance.
var debugEnabled atomic.Bool

// SetDebug enables or disables per-generation traces for the genetic algorithm.
func SetDebug(enabled bool) { debugEnabled.Store(enabled) }

// IsDebugEnabled returns whether per-generation traces are enabled.
func IsDebugEnabled() bool { return debugEnabled.Load() }

func (ga *GeneticAlgorithm[C]) debugf(format string, args ...interface{}) {
	if debugEnabled.Load() {
		ga.logger.Debug(format, args...)
	}
}
