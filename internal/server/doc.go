// Package server wires and runs the gateway's HTTP transport.
//
// It provides orchestration for the server lifecycle: startup, signal
// handling, and graceful shutdown.
package server
