package provisioning

import (
	"os"

	"github.com/charmbracelet/log"
)

// Observer receives progress during the creation pipeline. The plain
// implementation logs; the TUI implementation feeds a progress view.
type Observer interface {
	// Printf reports informational progress.
	Printf(format string, v ...interface{})

	// Warnf reports a non-fatal condition.
	Warnf(format string, v ...interface{})

	// Phase reports a pipeline phase transition. done is false when
	// the phase starts and true when it completes; err marks failure.
	Phase(key string, done bool, err error)
}

// LogObserver implements Observer with leveled structured logging.
type LogObserver struct {
	log *log.Logger
}

// NewLogObserver creates an observer logging to stderr.
func NewLogObserver() *LogObserver {
	return &LogObserver{log: log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})}
}

// Printf implements Observer.
func (o *LogObserver) Printf(format string, v ...interface{}) {
	o.log.Infof(format, v...)
}

// Warnf implements Observer.
func (o *LogObserver) Warnf(format string, v ...interface{}) {
	o.log.Warnf(format, v...)
}

// Phase implements Observer.
func (o *LogObserver) Phase(key string, done bool, err error) {
	switch {
	case err != nil:
		o.log.Error("phase failed", "phase", key, "err", err)
	case done:
		o.log.Info("phase complete", "phase", key)
	default:
		o.log.Info("phase started", "phase", key)
	}
}
