// Package telemetry provides a thin logging wrapper shared by the
// analyzer pipeline. It gates verbose ([DEBUG]-tagged) output on the
// DEBUG environment variable, following the same convention as the
// rest of the module's log.Printf call sites.
package telemetry

import (
	"log"
	"os"
)

// Verbose reports whether debug-level logging is enabled for this
// process (DEBUG=true).
func Verbose() bool {
	return os.Getenv("DEBUG") == "true"
}

// Debugf logs a message only when Verbose() is true.
func Debugf(format string, args ...interface{}) {
	if !Verbose() {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

// Warnf always logs a warning-level message, matching the [WARN]
// convention used elsewhere in this module.
func Warnf(format string, args ...interface{}) {
	log.Printf("[WARN] "+format, args...)
}

// Stage logs a single pipeline stage's completion with its pattern
// count, used by the Driver between components.
func Stage(name string, patternCount int) {
	log.Printf("[STAGE] %s completed: %d patterns", name, patternCount)
}
