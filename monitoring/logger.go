// Package monitoring holds the diagnostic logger and run counters shared by the
// batch utilities.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// NonFatal logs a skipped item without stopping the run.
func NonFatal(format string, v ...interface{}) {
	Logf("Non fatal: "+format, v...)
}
