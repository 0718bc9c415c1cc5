// Package constants provides shared constants used across lexmatch components.
package constants

import "time"

// Shutdown and polling intervals
const (
	// GracefulShutdownTimeout is the time to wait for the watcher to stop
	GracefulShutdownTimeout = 2 * time.Second

	// DefaultPollInterval is the keyword file polling interval when fsnotify is unavailable
	DefaultPollInterval = 1 * time.Second
)

// Channel buffer sizes
//
// Single-item buffers are used for signals and errors that should never
// block the sender.
const (
	// SignalChannelBuffer is the buffer size for OS signal channels
	SignalChannelBuffer = 1

	// ErrorChannelBuffer is the buffer size for error reporting channels
	ErrorChannelBuffer = 1
)

// Input sizes
const (
	// DefaultChunkSize is how much input the scan command reads per Write
	// into a match stream.
	DefaultChunkSize = 64 * 1024

	// MaxLineLength bounds a single line read by the watch command.
	MaxLineLength = 1024 * 1024
)
