package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
)

var (
	logger   *log.Logger
	logLevel = LevelInfo
	logFile  *os.File
)

// SetupLogger initializes the logger, writing to both stdout and a dated log file.
func SetupLogger() error {
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(logDir, fmt.Sprintf("server-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	logger = log.New(io.MultiWriter(os.Stdout, f), "", log.LstdFlags)

	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = LevelDebug
	}

	return nil
}

// Close closes the underlying log file.
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

func output(level int, prefix, format string, args ...interface{}) {
	if level < logLevel {
		return
	}
	if logger == nil {
		// Logger not set up yet, fall back to the standard logger
		log.Printf(prefix+" "+format, args...)
		return
	}
	logger.Printf(prefix+" "+format, args...)
}

// Debug logs a debug level message.
func Debug(format string, args ...interface{}) {
	output(LevelDebug, "[DEBUG]", format, args...)
}

// Info logs an info level message.
func Info(format string, args ...interface{}) {
	output(LevelInfo, "[INFO]", format, args...)
}

// Warning logs a warning level message.
func Warning(format string, args ...interface{}) {
	output(LevelWarning, "[WARN]", format, args...)
}

// Error logs an error level message.
func Error(format string, args ...interface{}) {
	output(LevelError, "[ERROR]", format, args...)
}
