package ldmonitor

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// Config exposes advanced configuration options for a Monitor. Use it with NewCustomMonitor; a zero
// Config gives the same behavior as NewMonitor.
type Config struct {
	// Loggers is where the monitor writes log output. A Factory error while rebuilding a snapshot
	// after a change is reported only here. If it
	// is not set, output goes to the default ldlog destination at Info level; use
	// ldlog.NewDisabledLoggers() to turn logging off.
	Loggers ldlog.Loggers

	// IsolateListenerPanics, if true, makes the monitor recover from a panic in an OnChange listener,
	// log it, and go on to the remaining listeners. By default a panicking listener stops delivery of
	// that change to the listeners registered after it, and the panic propagates to whatever fired
	// the change.
	IsolateListenerPanics bool
}
