// Package server wires and runs the application's transport server.
//
// It provides orchestration for the HTTP server lifecycle, including
// startup, signal handling, and graceful shutdown. WebSocket connections
// are served by the same HTTP listener as the REST API.
package server
