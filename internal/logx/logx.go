package logx

import (
	"github.com/edaniels/golog"
)

// New creates the process logger. Debug mode switches to a development
// configuration with debug-level output; the optional context tag
// distinguishes parallel invocations sharing one cache.
func New(debug bool, contextTag string) golog.Logger {
	var logger golog.Logger
	if debug {
		logger = golog.NewDevelopmentLogger("ideadep")
	} else {
		logger = golog.NewLogger("ideadep")
	}
	if contextTag != "" {
		logger = logger.With("context", contextTag)
	}
	return logger
}
