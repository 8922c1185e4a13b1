// Package timeouts defines shared timeout constants used across the web
// front-end. Centralizing these values prevents drift between the HTTP
// server and the portal client and makes the durations discoverable.
package timeouts

import "time"

// PortalRequest caps the time allowed for a single request against the
// remote campaign portal API. A timed-out request is terminal; the user
// retries manually.
const PortalRequest = 10 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
