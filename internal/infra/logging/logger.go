package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the process-wide logger. When file is non-empty, output is
// rotated with lumberjack and mirrored to stderr.
func Init(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	var w io.Writer = os.Stderr
	if file != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		})
	}
	logger = zerolog.New(w).With().Timestamp().Logger()
	SetLogLevel(level)
}

// SetLogLevel changes the active level at runtime. Unknown levels fall back
// to info.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger = logger.Level(lvl)
}

// SetLoggerForTest replaces the package logger so tests can capture output.
func SetLoggerForTest(l zerolog.Logger) {
	logger = l
}

// Info logs at info level with alternating key-value pairs.
func Info(msg string, kv ...interface{}) {
	withFields(logger.Info(), kv).Msg(msg)
}

// Warn logs at warn level with alternating key-value pairs.
func Warn(msg string, kv ...interface{}) {
	withFields(logger.Warn(), kv).Msg(msg)
}

// Error logs at error level with alternating key-value pairs.
func Error(msg string, kv ...interface{}) {
	withFields(logger.Error(), kv).Msg(msg)
}

// withFields applies pairs in order; a dangling key without a value is
// dropped rather than panicking.
func withFields(ev *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}
