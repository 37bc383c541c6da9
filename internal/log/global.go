package log

import "sync/atomic"

// current is the process-wide logger the CLI installs once configuration is
// loaded. Library packages take a *Logger explicitly and never read it.
var current atomic.Pointer[Logger]

// SetDefaultLogger installs logger as the process-wide logger and returns the
// one it replaces, which may be nil. Passing nil resets to the lazy default.
func SetDefaultLogger(logger *Logger) (previous *Logger) {
	return current.Swap(logger)
}

// DefaultLogger returns the process-wide logger, creating a text logger at
// info level on stderr when none was installed.
func DefaultLogger() *Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, Default())
	return current.Load()
}
