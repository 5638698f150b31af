// Package xlog supplies a small leveled logger used by the allocator's
// packages to report OS acquisitions, OOM and invalid-free events without
// forcing a particular logging library on the host application.
package xlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Logger interface that host applications can implement to integrate
// allocator logging with their own logging pipeline.
type Logger interface {
	SetLogLevel(string)
	Fatalf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Verbosef(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Tracef(format string, v ...interface{})
}

type level int

const (
	levelIgnore level = iota + 1
	levelFatal
	levelError
	levelWarn
	levelInfo
	levelVerbose
	levelDebug
	levelTrace
)

var log Logger = &defaultLogger{level: levelInfo, output: os.Stdout}

// SetLogger replaces the package-wide logger. Passing nil resets the
// log-level on the current default logger instead of replacing it.
func SetLogger(logger Logger, levelname string) Logger {
	if logger != nil {
		log = logger
		return log
	}
	if levelname != "" {
		log.SetLogLevel(levelname)
	}
	return log
}

// Get returns the package-wide logger.
func Get() Logger {
	return log
}

// SetOutputFile redirects the default logger's output to the named file,
// opening it for append (creating it if necessary). It is a no-op if the
// package-wide logger has been replaced by a host-supplied Logger, since
// only the built-in defaultLogger writes through a single io.Writer this
// package controls.
func SetOutputFile(path string) error {
	dl, ok := log.(*defaultLogger)
	if !ok {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	dl.output = f
	return nil
}

type defaultLogger struct {
	level  level
	output io.Writer
}

func (l *defaultLogger) SetLogLevel(name string) {
	l.level = string2level(name)
}

func (l *defaultLogger) Fatalf(format string, v ...interface{}) {
	l.printf(levelFatal, format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	l.printf(levelError, format, v...)
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	l.printf(levelWarn, format, v...)
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	l.printf(levelInfo, format, v...)
}

func (l *defaultLogger) Verbosef(format string, v ...interface{}) {
	l.printf(levelVerbose, format, v...)
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	l.printf(levelDebug, format, v...)
}

func (l *defaultLogger) Tracef(format string, v ...interface{}) {
	l.printf(levelTrace, format, v...)
}

func (l *defaultLogger) printf(lv level, format string, v ...interface{}) {
	if lv > l.level {
		return
	}
	ts := time.Now().Format("2006-01-02T15:04:05.999Z-07:00")
	fmt.Fprintf(l.output, ts+" ["+lv.String()+"] "+format+"\n", v...)
}

func (lv level) String() string {
	switch lv {
	case levelFatal:
		return "Fatal"
	case levelError:
		return "Error"
	case levelWarn:
		return "Warng"
	case levelInfo:
		return "Infom"
	case levelVerbose:
		return "Verbs"
	case levelDebug:
		return "Debug"
	case levelTrace:
		return "Trace"
	}
	return "Ignor"
}

func string2level(name string) level {
	switch strings.ToLower(name) {
	case "fatal":
		return levelFatal
	case "error":
		return levelError
	case "warn":
		return levelWarn
	case "info":
		return levelInfo
	case "verbose":
		return levelVerbose
	case "debug":
		return levelDebug
	case "trace":
		return levelTrace
	}
	return levelIgnore
}
