// Package connector defines the uniform contract for reading and writing
// collections of semi-structured records, implemented by the platform and
// database bindings.
package connector

import (
	"context"
	"fmt"
)

// Record is one semi-structured record in flight between a source and a sink.
type Record map[string]any

// Client is a connected source/sink for one side of a mapping.
type Client interface {
	// TestConnection probes the remote side. A negative probe is not retried.
	TestConnection(ctx context.Context) error
	// Fetch reads records from the named collection. fields, when non-empty,
	// is a projection hint; limit of 0 means all available records.
	Fetch(ctx context.Context, collection string, fields []string, limit int) ([]Record, error)
	// Write inserts one record into the named collection.
	Write(ctx context.Context, collection string, rec Record) error
	Close() error
}

// ConnectionError means a side could not be reached or authenticated.
// It aborts the whole run.
type ConnectionError struct {
	Side string // "platform" or "database"
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Side, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// WriteError means one record could not be written. The run tallies it and
// continues.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write to %s failed: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UnsupportedResourceError means the mapping names a resource the platform
// binding does not expose.
type UnsupportedResourceError struct {
	Platform string
	Resource string
}

func (e *UnsupportedResourceError) Error() string {
	return fmt.Sprintf("unsupported %s resource: %s", e.Platform, e.Resource)
}

// UnsupportedPlatformError means the connection carries an unknown platform
// type tag.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform type: %s", e.Platform)
}

// StatusError is a non-2xx HTTP response from a platform API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}
