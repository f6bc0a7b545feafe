// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between layers and makes the
// durations discoverable.
package timeouts

import "time"

// NumberAllocation caps how long a caller waits for the sequence book write
// lock before the allocation fails with a retryable contention error.
const NumberAllocation = 5 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
