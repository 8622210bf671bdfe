package singleinstance

// This file defines the API for resident ownership and snapshot delegation.

import (
	"context"
	"fmt"
)

// PortRange is an inclusive loopback port range. The resident binds Start;
// clients ping every port from Start to End.
type PortRange struct {
	Start, End int
}

func (r PortRange) String() string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// Server owns the loopback endpoint and answers snapshot requests.
type Server interface {
	// Start binds the first port of the range and accepts clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends the mosaic text. Clipboard requests send empty text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request represents a single snapshot request.
type Request struct {
	// ToStdout asks for the text in the response; otherwise the resident
	// copies it to its clipboard.
	ToStdout bool
}

// Client asks a resident lens for its current mosaic.
type Client interface {
	// TrySnapshot scans the port range, performs the handshake, and delegates to
	// the resident. If no resident is found, returns delegated=false, err=nil.
	TrySnapshot(ctx context.Context, toStdout bool) (delegated bool, text string, err error)
}

// NewServer returns TCP implementation bound to r.Start.
func NewServer(r PortRange) Server { return newTcpServer(r) }

// NewClient returns TCP implementation scanning r.
func NewClient(r PortRange) Client { return newTcpClient(r) }
