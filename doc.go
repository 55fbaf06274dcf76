// Package splikz documents the Splikz feed API server.

// This package contains the main application entry points. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/feed: Feed composition and the seeded session shuffle
// - internal/playback: Exclusive playback coordination and loop enforcement
// - internal/session: Per-session shuffle seed minting and storage
// - internal/clipstore: Clip and profile data access
// - internal/models: Data models and database schemas
// - internal/realtime: WebSocket fanout for engagement counters
// - internal/storage: Media storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/cache: Redis client wrapper
// - internal/middleware: HTTP middleware (request ids, logging, metrics)
// - internal/telemetry: OpenTelemetry tracing setup

// See the individual package documentation for detailed API reference.
package splikz
