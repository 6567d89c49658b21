package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorPurple = "\033[35m"
)

// Log levels
const (
	LevelError = iota
	LevelWarning
	LevelInfo
	LevelDebug
)

var (
	Info    *log.Logger
	Debug   *log.Logger
	Warning *log.Logger
	Error   *log.Logger
	Success *log.Logger

	// Control overall logging level
	LogLevel = LevelInfo

	// Control color output
	useColors = true
)

// Initialize sets up the loggers with the specified outputs. Nil handles
// default to stdout (stderr for errors).
func Initialize(infoHandle, debugHandle, warningHandle, errorHandle io.Writer) {
	if infoHandle == nil {
		infoHandle = os.Stdout
	}
	if debugHandle == nil {
		debugHandle = os.Stdout
	}
	if warningHandle == nil {
		warningHandle = os.Stdout
	}
	if errorHandle == nil {
		errorHandle = os.Stderr
	}

	if useColors {
		Info = log.New(infoHandle, colorBlue+"INFO: "+colorReset, 0)
		Debug = log.New(debugHandle, colorPurple+"DEBUG: "+colorReset, log.Lshortfile)
		Warning = log.New(warningHandle, colorYellow+"WARNING: "+colorReset, 0)
		Error = log.New(errorHandle, colorRed+"ERROR: "+colorReset, 0)
		Success = log.New(infoHandle, colorGreen, 0)
	} else {
		Info = log.New(infoHandle, "INFO: ", 0)
		Debug = log.New(debugHandle, "DEBUG: ", log.Lshortfile)
		Warning = log.New(warningHandle, "WARNING: ", 0)
		Error = log.New(errorHandle, "ERROR: ", 0)
		Success = log.New(infoHandle, "", 0)
	}
}

// DisableColors disables colored output
func DisableColors() {
	useColors = false
	Initialize(nil, nil, nil, nil)
}

// SetLevel sets the logging level
func SetLevel(level int) {
	if level >= LevelError && level <= LevelDebug {
		LogLevel = level
	}
}

func Infof(format string, v ...interface{}) {
	if LogLevel >= LevelInfo {
		Info.Output(2, fmt.Sprintf(format, v...))
	}
}

func Debugf(format string, v ...interface{}) {
	if LogLevel >= LevelDebug {
		Debug.Output(2, fmt.Sprintf(format, v...))
	}
}

func Warningf(format string, v ...interface{}) {
	if LogLevel >= LevelWarning {
		Warning.Output(2, fmt.Sprintf(format, v...))
	}
}

func Errorf(format string, v ...interface{}) {
	if LogLevel >= LevelError {
		Error.Output(2, fmt.Sprintf(format, v...))
	}
}

// Successf prints a green confirmation line at info level. Used by commands
// to report completed work.
func Successf(format string, v ...interface{}) {
	if LogLevel >= LevelInfo {
		msg := fmt.Sprintf(format, v...)
		if useColors {
			msg += colorReset
		}
		Success.Output(2, msg)
	}
}

func init() {
	Initialize(nil, nil, nil, nil)
}
