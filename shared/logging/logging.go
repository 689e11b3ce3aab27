package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	TRACE Level = iota
	DEBUG
	INFO
	WARNING
	ERROR
)

const (
	format = "2006-01-02 15:04:05"
)

var (
	mu       sync.Mutex
	minLevel = INFO
	out      io.Writer

	colors = map[Level]*color.Color{
		TRACE:   color.New(color.FgCyan),
		DEBUG:   color.New(color.FgGreen),
		INFO:    color.New(color.FgWhite),
		WARNING: color.New(color.FgYellow),
		ERROR:   color.New(color.FgRed),
	}
)

func (l Level) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name (case-insensitive) to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TRACE, nil
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARNING, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// SetLevel drops every message below l
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()

	minLevel = l
}

// SetOutput redirects log lines, nil restores the color package's stdout
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
}

func Trace(msg string) {
	output(TRACE, msg)
}

func Tracef(msg string, args ...interface{}) {
	Trace(fmt.Sprintf(msg, args...))
}

func Debug(msg string) {
	output(DEBUG, msg)
}

func Debugf(msg string, args ...interface{}) {
	Debug(fmt.Sprintf(msg, args...))
}

func Info(msg string) {
	output(INFO, msg)
}

func Infof(msg string, args ...interface{}) {
	Info(fmt.Sprintf(msg, args...))
}

func Warning(msg string) {
	output(WARNING, msg)
}

func Warningf(msg string, args ...interface{}) {
	Warning(fmt.Sprintf(msg, args...))
}

func Error(msg string) {
	output(ERROR, msg)
}

func Errorf(msg string, args ...interface{}) {
	Error(fmt.Sprintf(msg, args...))
}

func output(l Level, msg string) {
	mu.Lock()
	defer mu.Unlock()

	if l < minLevel {
		return
	}

	c, ok := colors[l]
	if !ok {
		return
	}

	w := out
	if w == nil {
		w = color.Output
	}

	t := time.Now().Format(format)
	c.Fprintf(w, "%v %s %s\n", t, l, msg)
}
