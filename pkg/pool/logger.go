package pool

import (
	"fmt"
	"log"
	"os"
)

// Logger is a minimal logging interface so the pool can report without
// depending on any particular logging stack. Swap it via SetLogger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// defaultSimpleLogger implements Logger using standard log
type defaultSimpleLogger struct {
	debug *log.Logger
	err   *log.Logger
}

func newDefaultSimpleLogger() Logger {
	return &defaultSimpleLogger{
		debug: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
		err:   log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultSimpleLogger) Debugf(format string, args ...interface{}) {
	l.debug.Output(3, fmt.Sprintf(format, args...))
}

func (l *defaultSimpleLogger) Errorf(format string, args ...interface{}) {
	l.err.Output(3, fmt.Sprintf(format, args...))
}
