package logger

import "sync/atomic"

// LogFormat is format type
type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

// LogLevel is Logger Level type
type LogLevel string

const (
	// TraceLevel level. Designates finer-grained informational events than the Debug.
	TraceLevel LogLevel = "trace"
	// DebugLevel level. Usually only enabled when debugging. Very verbose logging.
	DebugLevel LogLevel = "debug"
	// InfoLevel is the default logging priority.
	// General operational entries about what's going on inside the application.
	InfoLevel LogLevel = "info"
	// WarnLevel level. Non-critical entries that deserve eyes.
	WarnLevel LogLevel = "warn"
	// ErrorLevel level. Logs. Used for errors that should definitely be noted.
	ErrorLevel LogLevel = "error"
	// FatalLevel level. Logs and then calls `logger.Exit(1)`. highest level of severity.
	FatalLevel LogLevel = "fatal"
)

type ILogger interface {
	WithFields(map[string]any) ILogger
	Trace(args ...any)
	Tracef(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	GetLevel() LogLevel
	IsLevelEnabled(level LogLevel) bool
}

type holder struct {
	l ILogger
}

var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(holder{l: nopLogger{}})
}

// Default returns the process wide logger. It discards everything until SetDefault is called.
func Default() ILogger {
	return defaultLogger.Load().(holder).l
}

func SetDefault(logger ILogger) {
	if logger == nil {
		logger = nopLogger{}
	}
	defaultLogger.Store(holder{l: logger})
}

type nopLogger struct{}

func (l nopLogger) WithFields(map[string]any) ILogger { return l }
func (nopLogger) Trace(args ...any) {}
func (nopLogger) Tracef(format string, args ...any) {}
func (nopLogger) Debug(args ...any) {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Info(args ...any) {}
func (nopLogger) Infof(format string, args ...any) {}
func (nopLogger) Warn(args ...any) {}
func (nopLogger) Warnf(format string, args ...any) {}
func (nopLogger) Error(args ...any) {}
func (nopLogger) Errorf(format string, args ...any) {}
func (nopLogger) Fatal(args ...any) {}
func (nopLogger) Fatalf(format string, args ...any) {}
func (nopLogger) GetLevel() LogLevel { return InfoLevel }
func (nopLogger) IsLevelEnabled(level LogLevel) bool { return false }
